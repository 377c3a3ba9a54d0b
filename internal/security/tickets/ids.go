// Package tickets genera identificadores opacos para tickets.
package tickets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	PrefixTGT = "TGT"
	PrefixST  = "ST"

	// 32 bytes => 43 chars base64url; suficiente entropía para que el id
	// sea imposible de adivinar sin depender del registry.
	idEntropyBytes = 32
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewID genera un id de ticket "PREFIX-<opaque>".
func NewID(prefix string) (string, error) {
	op, err := GenerateOpaqueToken(idEntropyBytes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", prefix, op), nil
}
