package interfaces

import (
	"context"

	"github.com/secmon-lab/airform/pkg/domain/model"
	"golang.org/x/oauth2"
)

// AirtableWhoAmI is the signed in Airtable account
type AirtableWhoAmI struct {
	ID     string   `json:"id"`
	Email  string   `json:"email,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// AirtableBase is one base the account can access
type AirtableBase struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel,omitempty"`
}

// AirtableService calls the Airtable Web API on behalf of one user
type AirtableService interface {
	WhoAmI(ctx context.Context) (*AirtableWhoAmI, error)
	ListBases(ctx context.Context) ([]AirtableBase, error)
	ListTables(ctx context.Context, baseID string) ([]model.Table, error)
	// GetTable returns nil without error when the base has no such table
	GetTable(ctx context.Context, baseID, tableID string) (*model.Table, error)
	CreateBase(ctx context.Context, workspaceID, name string, tables []model.Table) (*AirtableBase, error)
	CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (string, error)
	// RecordExists is false without error when Airtable answers 404
	RecordExists(ctx context.Context, baseID, tableID, recordID string) (bool, error)
}

// AirtableFactory builds an AirtableService from a user's stored credentials.
// Refreshed credentials are handed back through the user repository.
type AirtableFactory interface {
	ForUser(ctx context.Context, user *model.User) (AirtableService, error)
	// ForToken acts with a token that is not stored yet, used during login
	ForToken(ctx context.Context, token *oauth2.Token) AirtableService
}

// AirtableOAuth is the authorization code flow with PKCE
type AirtableOAuth interface {
	AuthURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
}

// BlobStorage stores uploaded attachment files
type BlobStorage interface {
	// Put writes the object and returns a URL Airtable can fetch it from
	Put(ctx context.Context, path, contentType string, body []byte) (string, error)
}
