package mailer

import (
	"testing"

	"ger-comercial/config"
	"ger-comercial/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestNew_TransportSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Mail
		wantHost string
		wantUser string
		wantFrom string
	}{
		{
			name: "gmail credentials select the gmail transport",
			cfg: config.Mail{
				GmailUser:        "relatorios@germani.com",
				GmailAppPassword: "app-password",
				From:             "sistema@germani.com",
			},
			wantHost: "smtp.gmail.com",
			wantUser: "relatorios@germani.com",
			// Gmail rejects a From that differs from the account.
			wantFrom: "relatorios@germani.com",
		},
		{
			name: "gmail wins when both transports are configured",
			cfg: config.Mail{
				GmailUser:        "relatorios@germani.com",
				GmailAppPassword: "app-password",
				SendgridAPIKey:   "SG.key",
				From:             "sistema@germani.com",
			},
			wantHost: "smtp.gmail.com",
			wantUser: "relatorios@germani.com",
			wantFrom: "relatorios@germani.com",
		},
		{
			name: "sendgrid key alone selects the relay",
			cfg: config.Mail{
				SendgridAPIKey: "SG.key",
				From:           "sistema@germani.com",
			},
			wantHost: "smtp.sendgrid.net",
			wantUser: "apikey",
			wantFrom: "sistema@germani.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg, nopLogger())
			require.NoError(t, err)

			smtp, ok := m.(*smtpMailer)
			require.True(t, ok)
			assert.Equal(t, tt.wantHost, smtp.dialer.Host)
			assert.Equal(t, 587, smtp.dialer.Port)
			assert.Equal(t, tt.wantUser, smtp.dialer.Username)
			assert.Equal(t, tt.wantFrom, smtp.from)
		})
	}
}

func TestNew_NoCredentials(t *testing.T) {
	_, err := New(config.Mail{From: "sistema@germani.com"}, nopLogger())
	assert.ErrorIs(t, err, ErrNoMailCredentials)
}

func TestNew_RateLimitDefault(t *testing.T) {
	cfg := config.Mail{SendgridAPIKey: "SG.key", From: "sistema@germani.com"}

	m, err := New(cfg, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, float64(1), float64(m.(*smtpMailer).limiter.Limit()))

	cfg.MaxSendPerSecond = 5
	m, err = New(cfg, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, float64(5), float64(m.(*smtpMailer).limiter.Limit()))
}
