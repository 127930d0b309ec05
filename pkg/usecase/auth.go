package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
	"github.com/secmon-lab/airform/pkg/utils/logging"
)

// AuthUseCaseInterface is implemented by AuthUseCase and NoAuthnUseCase
type AuthUseCaseInterface interface {
	GetAuthURL(state, verifier string) string
	HandleCallback(ctx context.Context, code, verifier string) (*auth.Token, error)
	ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error)
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
}

// AuthUseCase signs users in with their Airtable account and issues airform
// session tokens
type AuthUseCase struct {
	repo     interfaces.Repository
	oauth    interfaces.AirtableOAuth
	airtable interfaces.AirtableFactory
	cache    *authCache
}

var _ AuthUseCaseInterface = &AuthUseCase{}

func NewAuthUseCase(repo interfaces.Repository, oauth interfaces.AirtableOAuth, airtable interfaces.AirtableFactory) *AuthUseCase {
	return &AuthUseCase{
		repo:     repo,
		oauth:    oauth,
		airtable: airtable,
		cache:    newAuthCache(),
	}
}

// GetAuthURL returns the Airtable consent page URL
func (uc *AuthUseCase) GetAuthURL(state, verifier string) string {
	return uc.oauth.AuthURL(state, verifier)
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// HandleCallback exchanges the authorization code, stores the Airtable
// account with its credentials and issues a session token for it
func (uc *AuthUseCase) HandleCallback(ctx context.Context, code, verifier string) (*auth.Token, error) {
	if code == "" || verifier == "" {
		return nil, newError(ErrValidation, "Missing authorization code", nil)
	}

	oauthToken, err := uc.oauth.Exchange(ctx, code, verifier)
	if err != nil {
		return nil, upstream(err, "Failed to exchange authorization code")
	}

	me, err := uc.airtable.ForToken(ctx, oauthToken).WhoAmI(ctx)
	if err != nil {
		return nil, upstream(err, "Failed to fetch Airtable user")
	}

	now := time.Now().UTC()
	user, err := uc.repo.User().Upsert(ctx, &model.User{
		AirtableUserID: me.ID,
		Email:          me.Email,
		Name:           me.Email,
		Tokens: model.OAuthTokens{
			AccessToken:  oauthToken.AccessToken,
			RefreshToken: oauthToken.RefreshToken,
			ExpiresAt:    oauthToken.Expiry,
		},
		LastLoginAt: now,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store user", goerr.V("airtable_user_id", me.ID))
	}

	token := auth.NewToken(user.ID, me.ID, me.Email, user.Name)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V(UserIDKey, user.ID))
	}

	logging.From(ctx).Info("user signed in", "user_id", user.ID, "airtable_user_id", me.ID)
	return token, nil
}

// ValidateToken validates the token and returns user info
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.validateTokenWithCache(ctx, tokenID, tokenSecret)
}

// Logout deletes the token. Logging out of a session that is already gone
// succeeds.
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	uc.cache.remove(tokenID)

	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}
