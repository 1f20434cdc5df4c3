package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const (
	MinSecretLength = 32
	defaultTokenTTL = 24 * time.Hour
)

// TokenConfig holds the process-wide signing settings, loaded once at startup.
type TokenConfig struct {
	Secret    string
	Algorithm string // HS256, HS384 or HS512
	TTL       time.Duration
	Issuer    string
}

// tokenClaims is the JWT payload. The subject carries the user id.
type tokenClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies signed, time-limited session tokens.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	issuer string
}

func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token codec: secret must be at least %d bytes", MinSecretLength)
	}

	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	var method jwt.SigningMethod
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("token codec: unsupported algorithm %q", cfg.Algorithm)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &TokenCodec{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		issuer: cfg.Issuer,
	}, nil
}

// TTL is the fixed validity window applied by Mint.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Mint signs a token for the subject. Times are truncated to whole seconds, the
// precision of the JWT NumericDate.
func (c *TokenCodec) Mint(userID int64, username string, roles []domain.RoleName, now time.Time) (string, time.Time, error) {
	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.ttl)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	claims := tokenClaims{
		Username: username,
		Roles:    names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry against now and returns the embedded claims.
func (c *TokenCodec) Verify(token string, now time.Time) (*domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var tc tokenClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	userID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: invalid subject", domain.ErrTokenMalformed)
	}

	claims := &domain.Claims{
		UserID:    userID,
		Username:  tc.Username,
		Roles:     make([]domain.RoleName, 0, len(tc.Roles)),
		ExpiresAt: tc.ExpiresAt.Time.UTC(),
		TokenID:   tc.ID,
		Issuer:    tc.Issuer,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time.UTC()
	}
	for _, r := range tc.Roles {
		claims.Roles = append(claims.Roles, domain.RoleName(r))
	}
	return claims, nil
}

// classifyTokenError maps jwt parser errors onto the domain taxonomy.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", domain.ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
