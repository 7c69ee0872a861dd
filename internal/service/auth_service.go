package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"plant_monitor/internal/backend"
	"plant_monitor/internal/logger"
	"plant_monitor/internal/models"
	"plant_monitor/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultTokenTTL   = 12 * time.Hour
	minPasswordLength = 8
)

// Domain errors for auth flows.
var (
	ErrInvalidEmail    = errors.New("email must contain @")
	ErrInvalidPassword = fmt.Errorf("password must have at least %d characters", minPasswordLength)
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	errEmptySigningKey = errors.New("signing key is empty")
)

// AuthService handles user auth logic
type AuthService struct {
	api        Backend
	sessions   repository.Sessions
	activity   repository.Activity
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
	log        *logger.Logger
}

func NewAuthService(api Backend, sessions repository.Sessions, activity repository.Activity, opts Options, log *logger.Logger) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		api:        api,
		sessions:   sessions,
		activity:   activity,
		signingKey: []byte(opts.SigningKey),
		tokenTTL:   ttl,
		now:        now,
		log:        log,
	}
}

// Claims defines JWT claims. The registered ID claim carries the session id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ValidateCredentials applies the checks done before any backend call.
func ValidateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// Login validates credentials with the backend, opens a session and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password); err != nil {
		return "", err
	}

	payload, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, backend.ErrLoginRejected) {
			return "", fmt.Errorf("%w: %v", ErrBadCredentials, err)
		}
		return "", fmt.Errorf("backend login: %w", err)
	}

	now := s.now().UTC()
	sess := models.Session{
		ID:             uuid.NewString(),
		Email:          email,
		BackendSession: payload,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.tokenTTL),
	}
	token, err := s.issueToken(sess)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", err
	}

	record(ctx, s.activity, s.log, models.ActivityEvent{
		OccurredAt:  now,
		Type:        models.ActivityLogin,
		Actor:       email,
		Description: "signed in",
		Metadata:    map[string]any{"session_id": sess.ID},
	})
	return token, nil
}

// ParseToken parses a JWT and returns its claims.
func (s *AuthService) ParseToken(accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateSession resolves a token to a live session.
func (s *AuthService) ValidateSession(ctx context.Context, accessToken string) (*models.Session, error) {
	claims, err := s.ParseToken(accessToken)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout revokes the session so its token stops working.
func (s *AuthService) Logout(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return ErrSessionNotFound
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	record(ctx, s.activity, s.log, models.ActivityEvent{
		OccurredAt:  s.now().UTC(),
		Type:        models.ActivityLogout,
		Actor:       sess.Email,
		Description: "signed out",
		Metadata:    map[string]any{"session_id": sess.ID},
	})
	return nil
}

// helper: issue a signed JWT for a session
func (s *AuthService) issueToken(sess models.Session) (string, error) {
	if len(s.signingKey) == 0 {
		return "", errEmptySigningKey
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.Email,
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		},
		Email: sess.Email,
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
