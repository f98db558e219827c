package email_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
	}{
		{
			name: "valid",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "Hello",
				BodyHTML: "<p>hi</p>",
			},
		},
		{
			name:    "missing recipient",
			params:  email.SendEmailParams{Subject: "Hello", BodyHTML: "<p>hi</p>"},
			wantErr: true,
		},
		{
			name: "invalid address",
			params: email.SendEmailParams{
				SendTo:   "not-an-email",
				Subject:  "Hello",
				BodyHTML: "<p>hi</p>",
			},
			wantErr: true,
		},
		{
			name:    "missing subject",
			params:  email.SendEmailParams{SendTo: "user@example.com", BodyHTML: "<p>hi</p>"},
			wantErr: true,
		},
		{
			name:    "missing body",
			params:  email.SendEmailParams{SendTo: "user@example.com", Subject: "Hello"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDevSender_WritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	params := email.WelcomeEmail("user@example.com", "Alice")
	require.NoError(t, sender.SendEmail(context.Background(), params))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlSeen, jsonSeen bool
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".html"):
			htmlSeen = true
		case strings.HasSuffix(e.Name(), ".json"):
			jsonSeen = true
		}
	}
	assert.True(t, htmlSeen)
	assert.True(t, jsonSeen)
}

func TestDevSender_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	sender := email.NewDevSender(t.TempDir())
	err := sender.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	t.Run("welcome", func(t *testing.T) {
		t.Parallel()

		params := email.WelcomeEmail("user@example.com", "Alice")
		assert.Equal(t, "user@example.com", params.SendTo)
		assert.Contains(t, params.BodyHTML, "Alice")
		assert.NoError(t, params.Validate())
	})

	t.Run("referral success includes reward", func(t *testing.T) {
		t.Parallel()

		params := email.ReferralSuccessEmail("user@example.com", 20, 3)
		assert.Contains(t, params.BodyHTML, "20")
		assert.NoError(t, params.Validate())
	})

	t.Run("subscription success includes plan and credits", func(t *testing.T) {
		t.Parallel()

		params := email.SubscriptionSuccessEmail("user@example.com", "pro", 100)
		assert.Contains(t, params.BodyHTML, "100")
		assert.NoError(t, params.Validate())
	})

	t.Run("credit reset includes balance", func(t *testing.T) {
		t.Parallel()

		params := email.CreditResetEmail("user@example.com", "elite", 200)
		assert.Contains(t, params.BodyHTML, "200")
		assert.NoError(t, params.Validate())
	})

	t.Run("expired validates", func(t *testing.T) {
		t.Parallel()

		params := email.SubscriptionExpiredEmail("user@example.com")
		assert.NoError(t, params.Validate())
	})
}
