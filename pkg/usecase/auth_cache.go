package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
)

// authCacheTTL bounds how long a deleted session keeps working on other
// instances
const authCacheTTL = 5 * time.Minute

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(tokenID auth.TokenID) (*auth.Token, bool) {
	val, ok := c.cache.Load(tokenID)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedToken)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(tokenID)
		return nil, false
	}

	return cached.token, true
}

// set keeps token for authCacheTTL, never past the session's own expiry
func (c *authCache) set(token *auth.Token) {
	expiresAt := time.Now().Add(authCacheTTL)
	if token.ExpiresAt.Before(expiresAt) {
		expiresAt = token.ExpiresAt
	}
	c.cache.Store(token.ID, &cachedToken{
		token:     token,
		expiresAt: expiresAt,
	})
}

func (c *authCache) remove(tokenID auth.TokenID) {
	c.cache.Delete(tokenID)
}

// validateTokenWithCache checks the secret and expiry of a session token,
// reading the repository only on cache misses
func (uc *AuthUseCase) validateTokenWithCache(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, newError(ErrUnauthorized, "Invalid session", err)
	}

	token, cached := uc.cache.get(tokenID)
	if !cached {
		var err error
		token, err = uc.repo.GetToken(ctx, tokenID)
		if err != nil {
			return nil, newError(ErrUnauthorized, "Invalid session",
				goerr.Wrap(err, "failed to get token from repository", goerr.V("token_id", tokenID)))
		}
	}

	if token.Secret != tokenSecret {
		return nil, newError(ErrUnauthorized, "Invalid session", auth.ErrInvalidToken)
	}

	if token.IsExpired() {
		uc.cache.remove(tokenID)
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("token_id", tokenID))
		}
		return nil, newError(ErrUnauthorized, "Session expired", auth.ErrTokenExpired)
	}

	if !cached {
		uc.cache.set(token)
	}
	return token, nil
}
