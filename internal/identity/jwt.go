package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-market-auth/internal/model"
)

const (
	typAssertion = "assertion"
	typSession   = "session"
)

// JWTProvider implements Provider over HMAC-SHA256 JWTs sharing a
// secret with the identity service. The typ claim keeps raw assertions
// and minted session artifacts from being swapped for each other.
type JWTProvider struct {
	secret  []byte
	revoked RevocationChecker
	now     func() time.Time
}

func NewJWTProvider(secret string, revoked RevocationChecker) *JWTProvider {
	return &JWTProvider{
		secret:  []byte(secret),
		revoked: revoked,
		now:     time.Now,
	}
}

func (p *JWTProvider) VerifyAssertion(ctx context.Context, raw string) (Claims, error) {
	claims, err := p.parse(raw, typAssertion)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", model.ErrInvalidCredential, err)
	}
	return claims, nil
}

func (p *JWTProvider) MintArtifact(_ context.Context, claims Claims, ttl time.Duration) (string, error) {
	now := p.now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            claims.Subject,
		"email":          claims.Email,
		"email_verified": claims.EmailVerified,
		"role":           claims.Role.String(),
		"typ":            typSession,
		"jti":            uuid.NewString(),
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign session artifact: %w", err)
	}

	return signed, nil
}

func (p *JWTProvider) VerifyArtifact(ctx context.Context, artifact string, checkRevocation bool) (Claims, error) {
	claims, err := p.parse(artifact, typSession)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}

	if checkRevocation && p.revoked != nil {
		if err := p.revoked(ctx, claims.Subject, claims.IssuedAt); err != nil {
			return Claims{}, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
		}
	}

	return claims, nil
}

// MintAssertion signs a raw identity assertion the way the identity
// service does. Used by local development seeding and tests.
func (p *JWTProvider) MintAssertion(claims Claims, ttl time.Duration) (string, error) {
	now := p.now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            claims.Subject,
		"email":          claims.Email,
		"email_verified": claims.EmailVerified,
		"typ":            typAssertion,
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	})

	return token.SignedString(p.secret)
}

func (p *JWTProvider) parse(raw string, expectedType string) (Claims, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return p.now() }))
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("unexpected claims shape")
	}

	typ, _ := claimsMap["typ"].(string)
	if typ != expectedType {
		return Claims{}, fmt.Errorf("unexpected token type %q", typ)
	}

	claims := Claims{}
	claims.Subject, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)
	claims.EmailVerified, _ = claimsMap["email_verified"].(bool)

	if role, okRole := claimsMap["role"].(string); okRole {
		claims.Role = model.Role(role)
	}

	if iat, okIat := claimsMap["iat"].(float64); okIat {
		claims.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, okExp := claimsMap["exp"].(float64); okExp {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("missing token subject")
	}

	return claims, nil
}
