package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashokafoundation/website/pkg/email"
)

func TestSendParamsValidate(t *testing.T) {
	t.Parallel()

	valid := email.SendParams{
		To:       "john@example.com",
		Subject:  "Welcome",
		BodyHTML: "<p>hi</p>",
	}

	t.Run("valid params", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("invalid recipient", func(t *testing.T) {
		p := valid
		p.To = "not-an-address"
		require.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("missing subject", func(t *testing.T) {
		p := valid
		p.Subject = ""
		require.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})

	t.Run("missing body", func(t *testing.T) {
		p := valid
		p.BodyHTML = ""
		require.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
	})
}

func TestNewPostmarkSender(t *testing.T) {
	t.Parallel()

	t.Run("missing tokens", func(t *testing.T) {
		_, err := email.NewPostmarkSender(email.Config{
			SenderEmail:  "noreply@example.com",
			SupportEmail: "support@example.com",
		})
		require.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid sender address", func(t *testing.T) {
		_, err := email.NewPostmarkSender(email.Config{
			PostmarkServerToken:  "server-token",
			PostmarkAccountToken: "account-token",
			SenderEmail:          "nope",
			SupportEmail:         "support@example.com",
		})
		require.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("complete config", func(t *testing.T) {
		sender, err := email.NewPostmarkSender(email.Config{
			PostmarkServerToken:  "server-token",
			PostmarkAccountToken: "account-token",
			SenderEmail:          "noreply@example.com",
			SupportEmail:         "support@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, sender)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendParams{
		To:       "john@example.com",
		Subject:  "Welcome to the Foundation",
		BodyHTML: "<p>Welcome, John!</p>",
		Tag:      "welcome",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var sawHTML, sawJSON bool
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			sawHTML = true
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(data), "Welcome, John!")
		case ".json":
			sawJSON = true
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(data), "john@example.com")
		}
		assert.True(t, strings.Contains(e.Name(), "welcome"))
	}
	assert.True(t, sawHTML)
	assert.True(t, sawJSON)
}
