package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/config"
)

func TestNewMailerBuildsLinksFromBaseURL(t *testing.T) {
	m, err := NewMailer(&config.Config{BaseURL: "https://taskmate.example/"})
	require.NoError(t, err)

	assert.Equal(t, "https://taskmate.example/verify-email?token=abc", m.VerificationURL("abc"))
	assert.Equal(t, "https://taskmate.example/confirm/abc", m.ConfirmationURL("abc"))
}

func TestNewMailerWithSMTP(t *testing.T) {
	m, err := NewMailer(&config.Config{SMTPEnabled: true, SMTPHost: "localhost", SMTPPort: 2525})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestCloseEmptyStack(t *testing.T) {
	assert.NotPanics(t, func() { (&Stack{}).Close() })
}
