package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	svix "github.com/svix/svix-webhooks/go"

	"chidi/internal/domain"
	applog "chidi/internal/log"
)

var ErrBadSignature = errors.New("webhook signature mismatch")

// VerifyWebhook checks a Svix-signed identity webhook against its svix-id,
// svix-timestamp and svix-signature headers. Messages older or newer than
// five minutes are rejected.
func VerifyWebhook(secret string, headers http.Header, body []byte) error {
	if secret == "" {
		return ErrBadSignature
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return fmt.Errorf("webhook secret: %w", err)
	}
	if err := wh.Verify(body, headers); err != nil {
		return ErrBadSignature
	}
	return nil
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		PhoneNumbers []struct {
			PhoneNumber string `json:"phone_number"`
		} `json:"phone_numbers"`
	} `json:"data"`
}

// HandleWebhook mirrors identity-provider user events into the users table.
// Unknown event types are ignored.
func (s *AuthService) HandleWebhook(body []byte) (string, error) {
	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", invalid("webhook body is not valid JSON")
	}
	if ev.Data.ID == "" {
		return ev.Type, invalid("webhook event has no user id")
	}

	switch ev.Type {
	case "user.created", "user.updated":
		if len(ev.Data.EmailAddresses) == 0 {
			return ev.Type, invalid("webhook user has no email address")
		}
		u := domain.User{
			ID:         uuid.NewString(),
			ExternalID: ev.Data.ID,
			Email:      strings.ToLower(ev.Data.EmailAddresses[0].EmailAddress),
			Name:       strings.TrimSpace(ev.Data.FirstName + " " + ev.Data.LastName),
			Role:       RoleStaff,
		}
		if len(ev.Data.PhoneNumbers) > 0 {
			u.Phone = ev.Data.PhoneNumbers[0].PhoneNumber
		}
		if err := s.Users.UpsertExternal(u); err != nil {
			return ev.Type, err
		}
	case "user.deleted":
		if err := s.Users.DeleteByExternalID(ev.Data.ID); err != nil {
			return ev.Type, err
		}
	default:
		applog.Info(nil, "webhook.ignored", map[string]any{"type": ev.Type})
	}
	return ev.Type, nil
}
