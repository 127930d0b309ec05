package config

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/service/airtable"
	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Airtable holds the OAuth integration and no-auth development settings
type Airtable struct {
	clientID     string
	clientSecret string
	baseURL      string
	apiURL       string
	scopes       []string
	noAuth       bool
	token        string
}

// AirtableSetup is what serve needs to talk to Airtable and sign users in
type AirtableSetup struct {
	Factory interfaces.AirtableFactory
	Auth    usecase.AuthUseCaseInterface
}

func (x *Airtable) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "airtable-client-id",
			Usage:       "Airtable OAuth integration client ID",
			Category:    "Airtable",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("AIRFORM_AIRTABLE_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "airtable-client-secret",
			Usage:       "Airtable OAuth integration client secret (optional for PKCE only integrations)",
			Category:    "Airtable",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("AIRFORM_AIRTABLE_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL of this server, used to build the OAuth redirect URL (e.g., https://forms.example.com)",
			Category:    "Airtable",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("AIRFORM_BASE_URL"),
		},
		&cli.StringSliceFlag{
			Name:        "airtable-scope",
			Usage:       "OAuth scopes to request (default: records, schema, user email and webhooks)",
			Category:    "Airtable",
			Destination: &x.scopes,
			Sources:     cli.EnvVars("AIRFORM_AIRTABLE_SCOPES"),
		},
		&cli.StringFlag{
			Name:        "airtable-api-url",
			Usage:       "Airtable Web API root",
			Category:    "Airtable",
			Value:       airtable.DefaultBaseURL,
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("AIRFORM_AIRTABLE_API_URL"),
		},
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip login and act as the owner of --airtable-token (development only)",
			Category:    "Authentication",
			Destination: &x.noAuth,
			Sources:     cli.EnvVars("AIRFORM_NO_AUTH"),
		},
		&cli.StringFlag{
			Name:        "airtable-token",
			Usage:       "Airtable personal access token used with --no-auth",
			Category:    "Authentication",
			Destination: &x.token,
			Sources:     cli.EnvVars("AIRFORM_AIRTABLE_TOKEN"),
		},
	}
}

func (x Airtable) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("base-url", x.baseURL),
		slog.String("api-url", x.apiURL),
		slog.Any("scopes", x.scopes),
		slog.Bool("no-auth", x.noAuth),
		slog.Int("token.len", len(x.token)),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Airtable) IsNoAuthMode() bool {
	return x.noAuth
}

// RedirectURL is the OAuth callback served by this process
func (x *Airtable) RedirectURL() string {
	if x.baseURL == "" {
		return ""
	}
	return strings.TrimRight(x.baseURL, "/") + "/api/auth/callback"
}

func (x *Airtable) factoryOptions() []airtable.FactoryOption {
	if x.apiURL == "" {
		return nil
	}
	return []airtable.FactoryOption{airtable.WithAPIBaseURL(x.apiURL)}
}

// Configure builds the Airtable factory and the matching authentication use
// case. With --no-auth the personal access token owner becomes the only user.
func (x *Airtable) Configure(ctx context.Context, repo interfaces.Repository) (*AirtableSetup, error) {
	if x.noAuth {
		if x.token == "" {
			return nil, goerr.New("--no-auth requires --airtable-token")
		}
		if x.clientID != "" {
			logging.Default().Warn("--no-auth is set, ignoring --airtable-client-id")
		}

		factory := airtable.NewFactory(nil, repo.User(), x.factoryOptions()...)
		me, err := factory.ForToken(ctx, &oauth2.Token{AccessToken: x.token, TokenType: "Bearer"}).WhoAmI(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to validate Airtable token")
		}

		authUC, err := usecase.NewNoAuthnUseCase(ctx, repo, me.ID, me.Email, x.token)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set up no-auth user", goerr.V("airtable_user_id", me.ID))
		}
		return &AirtableSetup{Factory: factory, Auth: authUC}, nil
	}

	if x.clientID == "" || x.baseURL == "" {
		return nil, goerr.New("Airtable OAuth configuration is required: set --airtable-client-id and --base-url, or use --no-auth with --airtable-token")
	}

	var opts []airtable.OAuthOption
	if len(x.scopes) > 0 {
		opts = append(opts, airtable.WithScopes(x.scopes))
	}
	oauth, err := airtable.NewOAuth(x.clientID, x.clientSecret, x.RedirectURL(), opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Airtable OAuth")
	}

	factory := airtable.NewFactory(oauth, repo.User(), x.factoryOptions()...)
	return &AirtableSetup{
		Factory: factory,
		Auth:    usecase.NewAuthUseCase(repo, oauth, factory),
	}, nil
}

// ConfigureFactory builds a factory for background jobs that act with stored
// user credentials only
func (x *Airtable) ConfigureFactory(repo interfaces.Repository) (interfaces.AirtableFactory, error) {
	if x.clientID == "" {
		return airtable.NewFactory(nil, repo.User(), x.factoryOptions()...), nil
	}

	redirect := x.RedirectURL()
	if redirect == "" {
		// refresh never uses the redirect URL
		redirect = "http://localhost/api/auth/callback"
	}
	oauth, err := airtable.NewOAuth(x.clientID, x.clientSecret, redirect)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Airtable OAuth")
	}
	return airtable.NewFactory(oauth, repo.User(), x.factoryOptions()...), nil
}
