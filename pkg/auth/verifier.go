// Package auth verifies the bearer tokens of catalog writes against an identity provider.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/sync/singleflight"
)

// clockSkew is the leeway granted to the exp, nbf and iat claims.
const clockSkew = 30 * time.Second

type Verifier interface {
	Verify(ctx context.Context, tokenString string) (jwt.Token, error)
}

// JWTVerifier checks tokens against the key set published at a JWKS endpoint.
// The key set is refetched at most once per minInterval, and concurrent refreshes share one fetch.
type JWTVerifier struct {
	jwksURL     string
	issuer      string
	clientID    string
	minInterval time.Duration

	refresh singleflight.Group

	mu        sync.RWMutex
	keys      jwk.Set
	fetchedAt time.Time
}

// NewJWTVerifier creates a verifier and fetches the key set once, failing when it is unreachable.
func NewJWTVerifier(ctx context.Context, cfg config.IdP) (*JWTVerifier, error) {
	v := &JWTVerifier{
		jwksURL:     cfg.JwksURL,
		issuer:      cfg.Issuer,
		clientID:    cfg.ClientID,
		minInterval: cfg.MinInterval,
	}
	if _, err := v.keySet(ctx); err != nil {
		return nil, fmt.Errorf("initial JWKS fetch failed: %w", err)
	}
	return v, nil
}

// cached returns the last fetched key set and whether it is still fresh.
func (v *JWTVerifier) cached() (jwk.Set, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.keys, v.keys != nil && time.Since(v.fetchedAt) < v.minInterval
}

// keySet returns a fresh key set. When the endpoint fails, a stale set is preferred over an error.
func (v *JWTVerifier) keySet(ctx context.Context) (jwk.Set, error) {
	keys, fresh := v.cached()
	if fresh {
		return keys, nil
	}
	res, err, _ := v.refresh.Do(v.jwksURL, func() (any, error) {
		if keys, fresh := v.cached(); fresh {
			return keys, nil
		}
		fetched, err := jwk.Fetch(ctx, v.jwksURL)
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.keys, v.fetchedAt = fetched, time.Now()
		v.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		if keys != nil {
			return keys, nil
		}
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", v.jwksURL, err)
	}
	return res.(jwk.Set), nil
}

// Verify parses tokenString and checks its signature, its time claims, its issuer and its azp claim.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	keys, err := v.keySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get keyset for verification: %w", err)
	}
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(clockSkew),
		jwt.WithIssuer(v.issuer),
		jwt.WithClaimValue("azp", v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	return token, nil
}
