package airtable

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL  = "https://airtable.com/oauth2/v1/authorize"
	DefaultTokenURL = "https://airtable.com/oauth2/v1/token"
)

// DefaultScopes are the permissions airform asks for at login
var DefaultScopes = []string{
	"data.records:read",
	"data.records:write",
	"schema.bases:read",
	"schema.bases:write",
	"user.email:read",
	"webhook:manage",
}

// OAuth runs the Airtable authorization code flow with PKCE
type OAuth struct {
	config *oauth2.Config
}

type OAuthOption func(*OAuth)

// WithEndpoint replaces the Airtable authorize and token endpoints
func WithEndpoint(authURL, tokenURL string) OAuthOption {
	return func(o *OAuth) {
		o.config.Endpoint.AuthURL = authURL
		o.config.Endpoint.TokenURL = tokenURL
	}
}

// WithScopes replaces DefaultScopes
func WithScopes(scopes []string) OAuthOption {
	return func(o *OAuth) {
		o.config.Scopes = scopes
	}
}

// NewOAuth configures the flow for an Airtable OAuth integration. A client
// secret is optional; public integrations authenticate with PKCE alone.
func NewOAuth(clientID, clientSecret, redirectURL string, opts ...OAuthOption) (*OAuth, error) {
	if clientID == "" {
		return nil, goerr.New("Airtable OAuth client ID is required")
	}
	if redirectURL == "" {
		return nil, goerr.New("Airtable OAuth redirect URL is required")
	}

	authStyle := oauth2.AuthStyleInParams
	if clientSecret != "" {
		authStyle = oauth2.AuthStyleInHeader
	}

	o := &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       DefaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   DefaultAuthURL,
				TokenURL:  DefaultTokenURL,
				AuthStyle: authStyle,
			},
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// NewVerifier returns a fresh PKCE code verifier
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthURL is the consent page URL for state and the S256 challenge of verifier
func (o *OAuth) AuthURL(state, verifier string) string {
	return o.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for tokens
func (o *OAuth) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange Airtable authorization code")
	}
	return token, nil
}

// TokenSource refreshes token when it expires
func (o *OAuth) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return o.config.TokenSource(ctx, token)
}

// Scope is the space separated scope string sent to Airtable
func (o *OAuth) Scope() string {
	return strings.Join(o.config.Scopes, " ")
}
