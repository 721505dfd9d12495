package services_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	svix "github.com/svix/svix-webhooks/go"
	"github.com/stretchr/testify/require"

	"chidi/internal/repos"
	"chidi/internal/services"
)

type smsOutbox struct {
	mu   sync.Mutex
	msgs map[string]string
}

func (o *smsOutbox) Send(_ context.Context, to, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.msgs == nil {
		o.msgs = map[string]string{}
	}
	o.msgs[to] = body
	return nil
}

func newAuth(t *testing.T) (*services.AuthService, *smsOutbox) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	out := &smsOutbox{}
	return services.NewAuthService(repos.NewUserRepo(db), "test-secret", time.Hour, out), out
}

func TestRegisterLoginRefresh(t *testing.T) {
	auth, _ := newAuth(t)

	u, err := auth.Register(services.Registration{Email: "Kemi@Example.com", Password: "Str0ng!pass", Name: "Kemi"})
	require.NoError(t, err)
	assert.Equal(t, "kemi@example.com", u.Email)
	assert.Equal(t, services.RoleStaff, u.Role)

	_, err = auth.Register(services.Registration{Email: "kemi@example.com", Password: "Str0ng!pass", Name: "Kemi"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	_, err = auth.Login("kemi@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login("nobody@example.com", "Str0ng!pass")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	logged, err := auth.Login("KEMI@example.com", "Str0ng!pass")
	require.NoError(t, err)

	tok, exp, err := auth.Issue(logged)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := auth.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)

	fresh, _, err := auth.Refresh(tok)
	require.NoError(t, err)
	assert.NotEqual(t, tok, fresh)

	_, err = auth.Verify(tok + "x")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	other := services.NewAuthService(auth.Users, "other-secret", time.Hour, nil)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newAuth(t)
	_, err := auth.Register(services.Registration{Email: "bad", Password: "Str0ng!pass", Name: "X"})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = auth.Register(services.Registration{Email: "a@b.co", Password: "weak", Name: "X"})
	assert.ErrorIs(t, err, services.ErrInvalid)
}

func TestExpiredTokenRejected(t *testing.T) {
	auth, _ := newAuth(t)
	short := services.NewAuthService(auth.Users, "test-secret", -time.Minute, nil)
	u, err := auth.Profile("u-owner")
	require.NoError(t, err)
	tok, _, err := short.Issue(u)
	require.NoError(t, err)
	_, err = auth.Verify(tok)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestProfileAndOnboarding(t *testing.T) {
	auth, _ := newAuth(t)
	u, err := auth.Register(services.Registration{Email: "ada@example.com", Password: "Str0ng!pass", Name: "Ada"})
	require.NoError(t, err)
	assert.False(t, u.OnboardingCompleted)

	loc := "Port Harcourt"
	u, err = auth.UpdateProfile(u.ID, services.ProfileUpdate{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, loc, u.Location)

	bn := "Ada Bakes"
	_, err = auth.CompleteOnboarding(u.ID, services.ProfileUpdate{BusinessName: &bn})
	assert.ErrorIs(t, err, services.ErrInvalid)

	bt := "Food"
	u, err = auth.CompleteOnboarding(u.ID, services.ProfileUpdate{BusinessName: &bn, BusinessType: &bt})
	require.NoError(t, err)
	assert.True(t, u.OnboardingCompleted)

	stored, err := auth.Profile(u.ID)
	require.NoError(t, err)
	assert.True(t, stored.OnboardingCompleted)
	assert.Equal(t, "Ada Bakes", stored.BusinessName)

	require.NoError(t, auth.DeleteAccount(u.ID))
	_, err = auth.Profile(u.ID)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	assert.ErrorIs(t, auth.DeleteAccount(u.ID), services.ErrUserNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	auth, out := newAuth(t)
	ctx := context.Background()
	_, err := auth.Register(services.Registration{Email: "ife@example.com", Password: "Str0ng!pass", Name: "Ife", Phone: "+2348011112222"})
	require.NoError(t, err)

	require.NoError(t, auth.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, out.msgs)

	require.NoError(t, auth.RequestPasswordReset(ctx, "ife@example.com"))
	body := out.msgs["+2348011112222"]
	require.NotEmpty(t, body)
	code := body[strings.LastIndex(body, " ")+1:]

	assert.ErrorIs(t, auth.ConfirmPasswordReset("garbage", "N3w!passwd"), services.ErrInvalidToken)
	require.NoError(t, auth.ConfirmPasswordReset(code, "N3w!passwd"))
	assert.ErrorIs(t, auth.ConfirmPasswordReset(code, "An0ther!pw"), services.ErrInvalidToken)

	_, err = auth.Login("ife@example.com", "N3w!passwd")
	require.NoError(t, err)
}

func signedHeaders(t *testing.T, secret, msgID string, at time.Time, body []byte) http.Header {
	t.Helper()
	wh, err := svix.NewWebhook(secret)
	require.NoError(t, err)
	sig, err := wh.Sign(msgID, at, body)
	require.NoError(t, err)
	h := http.Header{}
	h.Set("svix-id", msgID)
	h.Set("svix-timestamp", strconv.FormatInt(at.Unix(), 10))
	h.Set("svix-signature", sig)
	return h
}

func TestVerifyWebhook(t *testing.T) {
	secret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("super-secret-key"))
	body := []byte(`{"type":"user.created"}`)
	now := time.Now()

	h := signedHeaders(t, secret, "msg_1", now, body)
	require.NoError(t, services.VerifyWebhook(secret, h, body))

	h.Set("svix-signature", "v0,old "+h.Get("svix-signature"))
	require.NoError(t, services.VerifyWebhook(secret, h, body), "any matching v1 entry is accepted")

	assert.ErrorIs(t, services.VerifyWebhook(secret, h, []byte(`{}`)), services.ErrBadSignature)

	moved := signedHeaders(t, secret, "msg_1", now, body)
	moved.Set("svix-id", "msg_2")
	assert.ErrorIs(t, services.VerifyWebhook(secret, moved, body), services.ErrBadSignature)

	stale := signedHeaders(t, secret, "msg_1", now.Add(-10*time.Minute), body)
	assert.ErrorIs(t, services.VerifyWebhook(secret, stale, body), services.ErrBadSignature)

	other := "whsec_" + base64.StdEncoding.EncodeToString([]byte("another-key"))
	assert.ErrorIs(t, services.VerifyWebhook(other, signedHeaders(t, secret, "msg_1", now, body), body), services.ErrBadSignature)
	assert.ErrorIs(t, services.VerifyWebhook("", h, body), services.ErrBadSignature)
}

func TestHandleWebhookMirrorsUsers(t *testing.T) {
	auth, _ := newAuth(t)

	typ, err := auth.HandleWebhook([]byte(`{"type":"user.created","data":{"id":"user_1","first_name":"Uche","last_name":"Nwosu",
		"email_addresses":[{"email_address":"Uche@Example.com"}],"phone_numbers":[{"phone_number":"+2348099990000"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "user.created", typ)

	u, err := auth.Users.ByExternalID("user_1")
	require.NoError(t, err)
	assert.Equal(t, "uche@example.com", u.Email)
	assert.Equal(t, "Uche Nwosu", u.Name)

	_, err = auth.HandleWebhook([]byte(`{"type":"user.updated","data":{"id":"user_1","first_name":"Uchenna",
		"email_addresses":[{"email_address":"uche@example.com"}]}}`))
	require.NoError(t, err)
	u, err = auth.Users.ByExternalID("user_1")
	require.NoError(t, err)
	assert.Equal(t, "Uchenna", u.Name)

	_, err = auth.HandleWebhook([]byte(`{"type":"session.created","data":{"id":"sess_1"}}`))
	require.NoError(t, err)

	_, err = auth.HandleWebhook([]byte(`{"type":"user.deleted","data":{"id":"user_1"}}`))
	require.NoError(t, err)
	_, err = auth.Users.ByExternalID("user_1")
	assert.Error(t, err)

	_, err = auth.HandleWebhook([]byte(`not json`))
	assert.ErrorIs(t, err, services.ErrInvalid)
}
