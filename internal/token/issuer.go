package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"accounthub/account-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of every session token.
const SessionTTL = 30 * time.Minute

const refreshTokenBytes = 64

// ErrNoRoles is returned when a token is requested for a user holding no
// roles. Issuing a role-less session token is not allowed.
var ErrNoRoles = errors.New("user has no roles")

type Claims struct {
	jwt.RegisteredClaims
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Fullname string `json:"fullname"`
}

type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewIssuer(secret, issuer, audience string) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// Generate signs a session token for the user. The first role in roles
// becomes the single role claim.
func (i *Issuer) Generate(user models.User, roles []string) (string, error) {
	if len(roles) == 0 {
		return "", ErrNoRoles
	}

	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
		Name:     user.Email,
		Email:    user.Email,
		Role:     roles[0],
		Fullname: user.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token, enforcing the signature, issuer, audience,
// and expiry.
func (i *Issuer) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("verify session token: %w", err)
	}
	return claims, nil
}

// GenerateRefresh returns an opaque base64-encoded refresh token.
func (i *Issuer) GenerateRefresh() string {
	buf := make([]byte, refreshTokenBytes)
	// crypto/rand.Read never fails.
	_, _ = rand.Read(buf)
	return base64.StdEncoding.EncodeToString(buf)
}
