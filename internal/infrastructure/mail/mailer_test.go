package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/pkg/config"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

func TestRenderReset_EscapaHTML(t *testing.T) {
	body, err := renderReset("<b>Ana</b>", "https://app.local/restablecer?token=abc&x=1")
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, body, `href="https://app.local/restablecer?token=abc&amp;x=1"`)
}

func TestLogMailer_NoFalla(t *testing.T) {
	m := NewLogMailer(logger.Nop())
	assert.NoError(t, m.SendPasswordReset(context.Background(), "a@b.co", "Ana", "http://x"))
}

func TestSMTPMailer_ContextoCancelado(t *testing.T) {
	m := NewSMTPMailer(smtpConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendPasswordReset(ctx, "a@b.co", "Ana", "http://x"), context.Canceled)
}

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{Host: "smtp.invalid", Port: 587, From: "no-reply@agrotrack.local", FromName: "AgroTrack"}
}
