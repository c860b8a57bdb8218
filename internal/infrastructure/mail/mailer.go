// Package mail adaptadores del puerto Mailer: SMTP vía gomail y uno que solo registra en log.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/pkg/config"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

var (
	_ ports.Mailer = (*SMTPMailer)(nil)
	_ ports.Mailer = (*LogMailer)(nil)
)

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #1f2937;">
<p>Hola {{.Name}},</p>
<p>Recibimos una solicitud para restablecer tu contraseña. El enlace vence en una hora.</p>
<p><a href="{{.Link}}" style="background:#15803d;color:#fff;padding:10px 16px;border-radius:6px;text-decoration:none;">Restablecer contraseña</a></p>
<p>Si no fuiste tú, ignora este mensaje.</p>
</body></html>`))

// SMTPMailer envía correo por SMTP con TLS.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPMailer construye el dialer; no conecta hasta el primer envío.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &SMTPMailer{dialer: d, from: cfg.From, fromName: cfg.FromName}
}

// SendPasswordReset envía el enlace de recuperación.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	body, err := renderReset(name, resetLink)
	if err != nil {
		return err
	}
	msg := gomail.NewMessage(gomail.SetCharset("UTF-8"), gomail.SetEncoding(gomail.Base64))
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Recuperación de contraseña")
	msg.SetBody("text/plain", "Para restablecer tu contraseña abre: "+resetLink)
	msg.AddAlternative("text/html", body)

	// gomail no acepta contexto: se respeta la cancelación previa al envío.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("enviar correo: %w", err)
	}
	return nil
}

func renderReset(name, link string) (string, error) {
	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return "", fmt.Errorf("plantilla de correo: %w", err)
	}
	return buf.String(), nil
}

// LogMailer registra el enlace en lugar de enviarlo (desarrollo, sin SMTP_HOST).
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, _, resetLink string) error {
	m.log.Info().Str("to", to).Str("link", resetLink).Msg("correo de recuperación (sin SMTP)")
	return nil
}
