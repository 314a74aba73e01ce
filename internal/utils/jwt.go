package utils // package utils provides password hashing and token issuing helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
)

// Token purposes. Both kinds are HS256 JWTs; the purpose claim is what keeps
// a reset token from being replayed as a session token and the reverse.
const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"

	DefaultSessionTTL = 24 * time.Hour
	DefaultResetTTL   = time.Hour
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrForbiddenRole = errors.New("admin access required")
)

// AccessToken is a signed JWT together with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims is the claim set of both token kinds. Session tokens carry
// UserID, Email and Role; reset tokens carry Email only.
type Claims struct {
	UserID  string `json:"user_id,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and validates session and password-reset tokens.
// It holds no per-token state and is safe for concurrent use.
type TokenService struct {
	secret      []byte
	resetSecret []byte
	SessionTTL  time.Duration
	ResetTTL    time.Duration
	Now         func() time.Time
}

// NewTokenService builds a service signing session tokens with secret and
// reset tokens with resetSecret (secret when empty).
func NewTokenService(secret, resetSecret string) *TokenService {
	if resetSecret == "" {
		resetSecret = secret
	}
	return &TokenService{
		secret:      []byte(secret),
		resetSecret: []byte(resetSecret),
		SessionTTL:  DefaultSessionTTL,
		ResetTTL:    DefaultResetTTL,
		Now:         time.Now,
	}
}

// IssueSessionToken signs a session token for u.
func (s *TokenService) IssueSessionToken(u model.User) (AccessToken, error) {
	now := s.Now().UTC()
	exp := now.Add(s.SessionTTL)
	claims := Claims{
		UserID:  u.ID,
		Email:   u.Email,
		Role:    u.Role,
		Purpose: PurposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return s.sign(claims, s.secret, exp)
}

// IssueResetToken signs a password-reset token for email.
func (s *TokenService) IssueResetToken(email string) (AccessToken, error) {
	now := s.Now().UTC()
	exp := now.Add(s.ResetTTL)
	claims := Claims{
		Email:   email,
		Purpose: PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return s.sign(claims, s.resetSecret, exp)
}

func (s *TokenService) sign(claims Claims, key []byte, exp time.Time) (AccessToken, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(key)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Decode verifies the signature and expiry of raw and returns its claims.
// It does not check the purpose; use AuthenticateSession or VerifyReset.
func (s *TokenService) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// claims are populated (unverified) before the key is looked up
		if claims.Purpose == PurposePasswordReset {
			return s.resetSecret, nil
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AuthenticateSession decodes raw and requires a session token.
func (s *TokenService) AuthenticateSession(raw string) (*Claims, error) {
	claims, err := s.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeSession || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AuthorizeAdmin decodes raw and requires a session token with the admin role.
func (s *TokenService) AuthorizeAdmin(raw string) (*Claims, error) {
	claims, err := s.AuthenticateSession(raw)
	if err != nil {
		return nil, err
	}
	if claims.Role != model.RoleAdmin {
		return nil, ErrForbiddenRole
	}
	return claims, nil
}

// VerifyReset decodes raw, requires a password-reset token and returns the
// email it was issued for.
func (s *TokenService) VerifyReset(raw string) (string, error) {
	claims, err := s.Decode(raw)
	if err != nil {
		return "", err
	}
	if claims.Purpose != PurposePasswordReset || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
