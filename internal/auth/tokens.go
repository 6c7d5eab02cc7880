package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/optbazar/optbazar/internal/shared"
)

const (
	tokenIssuer     = "optbazar"
	minSecretLength = 32
	revokedPrefix   = "auth:revoked:"
)

// ErrWeakSecret is returned when JWT_SECRET is missing or too short.
var ErrWeakSecret = fmt.Errorf("auth: jwt secret must be at least %d bytes", minSecretLength)

type adminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 admin tokens. Revoked token ids are
// kept in Redis until the token would have expired.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	denylist *redis.Client
	now      func() time.Time
}

// NewTokenManager builds a TokenManager. A nil client disables revocation.
func NewTokenManager(secret string, ttl time.Duration, client *redis.Client) (*TokenManager, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, denylist: client, now: time.Now}, nil
}

// Issue signs a token for admin.
func (m *TokenManager) Issue(admin Admin) (string, Principal, error) {
	now := m.now().UTC()
	p := Principal{
		AdminID:   admin.ID,
		Username:  admin.Username,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}
	claims := adminClaims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.TokenID,
			Subject:   admin.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Principal{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, p, nil
}

// Parse verifies raw and returns its principal. Invalid, expired or revoked
// tokens yield shared.ErrAuth.
func (m *TokenManager) Parse(ctx context.Context, raw string) (Principal, error) {
	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.ID == "" || claims.Subject == "" {
		return Principal{}, shared.ErrAuth
	}
	p := Principal{
		AdminID:   claims.Subject,
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	revoked, err := m.revoked(ctx, p.TokenID)
	if err != nil {
		return Principal{}, err
	}
	if revoked {
		return Principal{}, shared.ErrAuth
	}
	return p, nil
}

// Revoke denylists the token behind p for the rest of its lifetime.
func (m *TokenManager) Revoke(ctx context.Context, p Principal) error {
	if m.denylist == nil {
		return nil
	}
	remaining := p.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	if err := m.denylist.Set(ctx, revokedPrefix+p.TokenID, 1, remaining).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

func (m *TokenManager) revoked(ctx context.Context, id string) (bool, error) {
	if m.denylist == nil {
		return false, nil
	}
	err := m.denylist.Get(ctx, revokedPrefix+id).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: check revocation: %w", err)
	}
	return true, nil
}
