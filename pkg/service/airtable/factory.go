package airtable

import (
	"context"
	"net/http"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/utils/async"
	"github.com/secmon-lab/airform/pkg/utils/logging"
	"golang.org/x/oauth2"
)

// Factory builds per user Airtable services. Tokens refreshed on the way are
// written back to the user repository in the background.
type Factory struct {
	oauth   *OAuth
	users   interfaces.UserRepository
	baseURL string
}

var _ interfaces.AirtableFactory = &Factory{}

type FactoryOption func(*Factory)

// WithAPIBaseURL points every built service at another API root
func WithAPIBaseURL(baseURL string) FactoryOption {
	return func(f *Factory) {
		f.baseURL = baseURL
	}
}

// NewFactory builds a Factory. oauth may be nil when only static tokens are
// used.
func NewFactory(oauth *OAuth, users interfaces.UserRepository, opts ...FactoryOption) *Factory {
	f := &Factory{
		oauth:   oauth,
		users:   users,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForUser returns a service acting with user's Airtable credentials
func (f *Factory) ForUser(ctx context.Context, user *model.User) (interfaces.AirtableService, error) {
	if user == nil || !user.Tokens.HasAccessToken() {
		return nil, goerr.New("user has no Airtable credentials")
	}

	token := &oauth2.Token{
		AccessToken:  user.Tokens.AccessToken,
		RefreshToken: user.Tokens.RefreshToken,
		Expiry:       user.Tokens.ExpiresAt,
		TokenType:    "Bearer",
	}

	// personal access tokens in no-auth mode have nothing to refresh with
	if f.oauth == nil {
		return f.ForToken(ctx, token), nil
	}

	ts := &persistingTokenSource{
		base:  f.oauth.TokenSource(context.WithoutCancel(ctx), token),
		last:  token.AccessToken,
		user:  user,
		users: f.users,
	}

	return New(newHTTPClient(ctx, ts), WithBaseURL(f.baseURL)), nil
}

// ForToken returns a service acting with a freshly issued token, used during
// login before the user is stored
func (f *Factory) ForToken(ctx context.Context, token *oauth2.Token) interfaces.AirtableService {
	return New(newHTTPClient(ctx, oauth2.StaticTokenSource(token)), WithBaseURL(f.baseURL))
}

// newHTTPClient keeps any client injected into ctx with oauth2.HTTPClient so
// tests can route the API through httptest
func newHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, ts))
}

type persistingTokenSource struct {
	base  oauth2.TokenSource
	mu    sync.Mutex
	last  string
	user  *model.User
	users interfaces.UserRepository
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, goerr.Wrap(ErrAPI, "failed to refresh Airtable token", goerr.V("cause", err.Error()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last {
		return token, nil
	}
	s.last = token.AccessToken

	updated := *s.user
	updated.Tokens = model.OAuthTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	async.Dispatch(context.Background(), func(ctx context.Context) error {
		if _, err := s.users.Upsert(ctx, &updated); err != nil {
			return goerr.Wrap(err, "failed to store refreshed Airtable token", goerr.V("user_id", updated.ID))
		}
		logging.From(ctx).Debug("stored refreshed Airtable token", "user_id", updated.ID)
		return nil
	})

	return token, nil
}
