package authn

import "time"

// Principal es la identidad autenticada y su set de atributos.
// Los atributos pueden ser multi-valuados (ej: memberOf).
type Principal struct {
	ID         string
	Attributes map[string][]string
}

// AttributeValues retorna los valores del atributo name, o nil si no existe.
func (p Principal) AttributeValues(name string) []string {
	if p.Attributes == nil {
		return nil
	}
	return p.Attributes[name]
}

// CredentialMetadata describe una credencial usada durante la autenticación,
// sin material sensible (el hash/secreto nunca viaja en el ticket).
type CredentialMetadata struct {
	ID   string
	Type string // password | otp | webauthn | external
}

// HandlerResult es el resultado de un authentication handler individual.
type HandlerResult struct {
	HandlerName string
	Success     bool
	Detail      string
}

// Authentication es el registro inmutable de una autenticación completada.
// Lo produce el paso de verificación de credenciales (colaborador externo);
// este core solo lo consume.
type Authentication struct {
	Principal   Principal
	Credentials []CredentialMetadata
	Results     map[string]HandlerResult
	AuthTime    time.Time
}

// IsZero reporta si el registro está vacío. Una autenticación sin identidad
// de principal está vacía aunque traiga timestamp o credenciales: nada aguas
// abajo puede operar sin saber quién se autenticó.
func (a Authentication) IsZero() bool {
	return a.Principal.ID == ""
}

// New construye un registro de autenticación con el tiempo actual.
func New(p Principal, creds []CredentialMetadata, results map[string]HandlerResult) Authentication {
	return Authentication{
		Principal:   p,
		Credentials: creds,
		Results:     results,
		AuthTime:    time.Now().UTC(),
	}
}
