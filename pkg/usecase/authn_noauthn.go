package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as one fixed user (for
// development). Airtable calls of that user use a personal access token.
type NoAuthnUseCase struct {
	user *model.User
}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

// NewNoAuthnUseCase stores the development user so that forms created in this
// mode have an owner with Airtable credentials
func NewNoAuthnUseCase(ctx context.Context, repo interfaces.Repository, airtableUserID, email, accessToken string) (*NoAuthnUseCase, error) {
	if airtableUserID == "" {
		airtableUserID = auth.AnonymousUserID.String()
	}

	user, err := repo.User().Upsert(ctx, &model.User{
		AirtableUserID: airtableUserID,
		Email:          email,
		Name:           email,
		Tokens:         model.OAuthTokens{AccessToken: accessToken},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store development user")
	}

	return &NoAuthnUseCase{user: user}, nil
}

func (uc *NoAuthnUseCase) token() *auth.Token {
	return auth.NewToken(uc.user.ID, uc.user.AirtableUserID, uc.user.Email, uc.user.Name)
}

// GetAuthURL returns a dummy URL (should not be called in no-auth mode)
func (uc *NoAuthnUseCase) GetAuthURL(state, verifier string) string {
	return "/"
}

// HandleCallback returns a token of the development user
func (uc *NoAuthnUseCase) HandleCallback(ctx context.Context, code, verifier string) (*auth.Token, error) {
	return uc.token(), nil
}

// ValidateToken always returns a token of the development user
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.token(), nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
