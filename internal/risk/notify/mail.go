package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/risk"
	"github.com/dropDatabas3/gatejohn/internal/util"
)

// Mail implementa Notifier por SMTP. El destinatario sale de un atributo
// del principal (AttributeName, típicamente "mail"); sin ese atributo o sin
// settings completos el aviso se saltea con un debug log, igual que el
// resto de señales opcionales.
type Mail struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool

	// AttributeName es el atributo del principal con el email destino.
	AttributeName string
	Subject       string

	// VerifyURL es la base del link de confirmación; se le apienda el
	// token firmado. Opcional.
	VerifyURL string
	Tokens    *VerifyTokenIssuer
}

func (m *Mail) Publish(_ context.Context, p authn.Principal, a risk.Attempt, as risk.Assessment) error {
	log := logger.Named("risk.notify.mail")

	attr := m.AttributeName
	if attr == "" {
		attr = "mail"
	}
	to := ""
	if vs := p.AttributeValues(attr); len(vs) > 0 {
		to = vs[0]
	}
	if to == "" || m.Host == "" || m.From == "" {
		log.Debug("mail notification skipped: missing recipient or smtp settings",
			logger.PrincipalID(p.ID), logger.String("attribute", attr))
		return nil
	}

	subject := m.Subject
	if subject == "" {
		subject = "Unusual sign-in activity on your account"
	}

	body := fmt.Sprintf(
		"We noticed a sign-in to %s from an unrecognized device or location.\n\n"+
			"IP: %s\nTime: %s\n\nIf this was you, no action is needed.",
		a.ServiceID, a.IP, as.EvaluatedAt.Format(time.RFC1123),
	)
	if m.VerifyURL != "" && m.Tokens != nil {
		tok, err := m.Tokens.Issue(as)
		if err != nil {
			return fmt.Errorf("notify: issue verify token: %w", err)
		}
		body += fmt.Sprintf("\n\nConfirm it was you: %s?token=%s", m.VerifyURL, tok)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         m.Host,
		InsecureSkipVerify: m.InsecureSkipVerify, // solo dev
	}
	switch m.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	log.Info("risk notification sent",
		logger.PrincipalID(p.ID), logger.String("to", util.MaskEmail(to)), logger.Score(as.Score))
	return nil
}
