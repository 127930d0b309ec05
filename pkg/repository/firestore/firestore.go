package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	form             *formRepository
	response         *responseRepository
	user             *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, letting tests and
// environments share one database
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.form = &formRepository{client: client, collection: f.collectionName(formsCollection)}
	f.response = &responseRepository{client: client, collection: f.collectionName(responsesCollection)}
	f.user = &userRepository{client: client, collection: f.collectionName(usersCollection)}

	return f, nil
}

const (
	formsCollection     = "forms"
	responsesCollection = "responses"
	usersCollection     = "users"
	tokensCollection    = "tokens"
)

func (f *Firestore) collectionName(name string) string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_" + name
	}
	return name
}

func (f *Firestore) Form() interfaces.FormRepository {
	return f.form
}

func (f *Firestore) Response() interfaces.ResponseRepository {
	return f.response
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
