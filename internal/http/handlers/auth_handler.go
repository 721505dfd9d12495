package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"chidi/internal/domain"
	"chidi/internal/log"
	"chidi/internal/services"
)

type AuthHandler struct {
	Auth          *services.AuthService
	WebhookSecret string
}

type tokenResp struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// issue signs a token for u, sets the token cookie for browser pages and
// writes the token response.
func (h *AuthHandler) issue(c *fiber.Ctx, status int, u *domain.User) error {
	tok, exp, err := h.Auth.Issue(u)
	if err != nil {
		return fail(c, "auth.issue", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
	})
	return c.Status(status).JSON(tokenResp{Token: tok, ExpiresAt: exp, User: u})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var r services.Registration
	if err := c.BodyParser(&r); err != nil {
		return badRequest(c, "body", "invalid registration payload")
	}
	u, err := h.Auth.Register(r)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return h.issue(c, fiber.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid login payload")
	}
	u, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	c.Locals(log.UserKey, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	return h.issue(c, fiber.StatusOK, u)
}

type refreshReq struct {
	Token string `json:"token"`
}

// Refresh takes the current token from the body, the Authorization header
// or the token cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshReq
	_ = c.BodyParser(&req)
	raw := req.Token
	if raw == "" {
		raw = bearerToken(c)
	}
	claims, err := h.Auth.Verify(raw)
	if err != nil {
		return fail(c, "auth.refresh", err)
	}
	u, err := h.Auth.Profile(claims.Subject)
	if err != nil {
		return fail(c, "auth.refresh", services.ErrInvalidToken)
	}
	return h.issue(c, fiber.StatusOK, u)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u, err := h.Auth.Profile(userID(c))
	if err != nil {
		return fail(c, "auth.profile", err)
	}
	return c.JSON(u)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var p services.ProfileUpdate
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body", "invalid profile payload")
	}
	u, err := h.Auth.UpdateProfile(userID(c), p)
	if err != nil {
		return fail(c, "auth.profile.update", err)
	}
	log.Audit(c, "auth.profile.update", nil)
	return c.JSON(u)
}

func (h *AuthHandler) Onboarding(c *fiber.Ctx) error {
	var p services.ProfileUpdate
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body", "invalid onboarding payload")
	}
	u, err := h.Auth.CompleteOnboarding(userID(c), p)
	if err != nil {
		return fail(c, "auth.onboarding", err)
	}
	log.Audit(c, "auth.onboarding", map[string]any{"business": u.BusinessName})
	return c.JSON(u)
}

func (h *AuthHandler) OnboardingStatus(c *fiber.Ctx) error {
	u, err := h.Auth.Profile(userID(c))
	if err != nil {
		return fail(c, "auth.onboarding.status", err)
	}
	return c.JSON(fiber.Map{"onboardingCompleted": u.OnboardingCompleted})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	uid := userID(c)
	if err := h.Auth.DeleteAccount(uid); err != nil {
		return fail(c, "auth.account.delete", err)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.account.delete", map[string]any{"user_id": uid})
	return c.SendStatus(fiber.StatusNoContent)
}

type resetReq struct {
	Email string `json:"email"`
}

// RequestReset always answers 202 so callers cannot probe for accounts.
func (h *AuthHandler) RequestReset(c *fiber.Ctx) error {
	var req resetReq
	_ = c.BodyParser(&req)
	if err := h.Auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		log.Error(c, "auth.reset.request", err, nil)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "If the account exists, a reset code has been sent."})
}

type confirmResetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ConfirmReset(c *fiber.Ctx) error {
	var req confirmResetReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid reset payload")
	}
	if err := h.Auth.ConfirmPasswordReset(req.Token, req.Password); err != nil {
		return fail(c, "auth.reset.confirm", err)
	}
	log.Audit(c, "auth.reset.confirm", nil)
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// Webhook receives signed identity-provider user events.
func (h *AuthHandler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	headers := http.Header{}
	for _, k := range []string{"svix-id", "svix-timestamp", "svix-signature"} {
		headers.Set(k, c.Get(k))
	}
	if err := services.VerifyWebhook(h.WebhookSecret, headers, body); err != nil {
		return fail(c, "webhook.verify", services.ErrBadSignature)
	}
	typ, err := h.Auth.HandleWebhook(body)
	if err != nil {
		return fail(c, "webhook.handle", err)
	}
	log.Audit(c, "webhook.received", map[string]any{"type": typ})
	return c.JSON(fiber.Map{"received": true, "type": typ})
}
