package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chidi/internal/alerts"
	"chidi/internal/domain"
	applog "chidi/internal/log"
	"chidi/internal/repos"
	"chidi/internal/validate"
)

var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUserNotFound = errors.New("user not found")
)

const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"

	resetTTL = time.Hour
)

// Claims is the bearer token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	Expiry time.Duration
	// Sender delivers password reset codes by SMS.
	Sender alerts.Sender
	now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, secret string, expiry time.Duration, sender alerts.Sender) *AuthService {
	if sender == nil {
		sender = alerts.NoopSender{}
	}
	return &AuthService{Users: users, Secret: []byte(secret), Expiry: expiry, Sender: sender, now: time.Now}
}

// Issue signs a bearer token for u.
func (s *AuthService) Issue(u *domain.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.Expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks the signature and expiry and returns the claims.
func (s *AuthService) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a still-valid token for a new one, provided the user
// still exists.
func (s *AuthService) Refresh(raw string) (string, time.Time, error) {
	claims, err := s.Verify(raw)
	if err != nil {
		return "", time.Time{}, err
	}
	u, err := s.Users.ByID(claims.Subject)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return s.Issue(u)
}

type Registration struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	BusinessName string `json:"businessName"`
}

func (s *AuthService) Register(r Registration) (*domain.User, error) {
	email, ok := validate.Email(r.Email)
	if !ok {
		return nil, invalid("email is not valid")
	}
	name, ok := validate.Name(r.Name)
	if !ok {
		return nil, invalid("name is required")
	}
	if !validate.Password(r.Password) {
		return nil, invalid("password needs 8-64 chars with upper, lower, digit and symbol")
	}
	phone := ""
	if r.Phone != "" {
		if phone, ok = validate.Phone(r.Phone); !ok {
			return nil, invalid("phone must be a valid phone number")
		}
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		Name:         name,
		Phone:        phone,
		BusinessName: strings.TrimSpace(r.BusinessName),
		Role:         RoleStaff,
		Hash:         string(h),
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Login(email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if u.Hash == "" || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	return u, nil
}

func (s *AuthService) Profile(userID string) (*domain.User, error) {
	u, err := s.Users.ByID(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ProfileUpdate holds the editable profile fields; nil leaves a field as is.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	BusinessName *string `json:"businessName"`
	BusinessType *string `json:"businessType"`
	Location     *string `json:"location"`
}

func (s *AuthService) UpdateProfile(userID string, p ProfileUpdate) (*domain.User, error) {
	u, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(u, p); err != nil {
		return nil, err
	}
	if err := s.Users.UpdateProfile(*u); err != nil {
		return nil, err
	}
	return u, nil
}

func applyProfile(u *domain.User, p ProfileUpdate) error {
	if p.Name != nil {
		name, ok := validate.Name(*p.Name)
		if !ok {
			return invalid("name is required")
		}
		u.Name = name
	}
	if p.Phone != nil {
		phone, ok := validate.Phone(*p.Phone)
		if !ok {
			return invalid("phone must be a valid phone number")
		}
		u.Phone = phone
	}
	for _, f := range []struct {
		in  *string
		out *string
	}{{p.BusinessName, &u.BusinessName}, {p.BusinessType, &u.BusinessType}, {p.Location, &u.Location}} {
		if f.in == nil {
			continue
		}
		v, ok := validate.Name(*f.in)
		if !ok {
			return invalid("business fields must be 1-80 chars")
		}
		*f.out = v
	}
	return nil
}

// CompleteOnboarding stores the business details and marks the user
// onboarded. Business name and type are required.
func (s *AuthService) CompleteOnboarding(userID string, p ProfileUpdate) (*domain.User, error) {
	if p.BusinessName == nil || p.BusinessType == nil {
		return nil, invalid("businessName and businessType are required")
	}
	u, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(u, p); err != nil {
		return nil, err
	}
	u.OnboardingCompleted = true
	if err := s.Users.CompleteOnboarding(*u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) DeleteAccount(userID string) error {
	if _, err := s.Profile(userID); err != nil {
		return err
	}
	return s.Users.Delete(userID)
}

// RequestPasswordReset texts a one-time reset code to the account's phone.
// Unknown emails and accounts without a phone succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if u.Phone == "" {
		applog.Security(nil, "auth.reset.no_phone", map[string]any{"user_id": u.ID})
		return nil
	}

	secret := uuid.NewString()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	pr := repos.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: string(h),
		ExpiresAt: s.now().Add(resetTTL).Unix(),
	}
	if err := s.Users.CreateReset(pr); err != nil {
		return err
	}
	code := pr.ID + "." + secret
	if err := s.Sender.Send(ctx, u.Phone, "Your CHIDI password reset code: "+code); err != nil {
		applog.Error(nil, "auth.reset.send", err, map[string]any{"user_id": u.ID})
	}
	applog.Audit(nil, "auth.reset.requested", map[string]any{"user_id": u.ID})
	return nil
}

// ConfirmPasswordReset sets a new password given a code from
// RequestPasswordReset. Codes work once and expire after an hour.
func (s *AuthService) ConfirmPasswordReset(code, password string) error {
	id, secret, ok := strings.Cut(code, ".")
	if !ok {
		return ErrInvalidToken
	}
	if !validate.Password(password) {
		return invalid("password needs 8-64 chars with upper, lower, digit and symbol")
	}
	pr, err := s.Users.Reset(id)
	if err != nil {
		return ErrInvalidToken
	}
	if pr.Used || s.now().Unix() > pr.ExpiresAt {
		return ErrInvalidToken
	}
	if bcrypt.CompareHashAndPassword([]byte(pr.TokenHash), []byte(secret)) != nil {
		return ErrInvalidToken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Users.ConsumeReset(pr.ID, pr.UserID, string(h)); err != nil {
		if errors.Is(err, repos.ErrResetUsed) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}
