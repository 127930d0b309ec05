package storage

import (
	"context"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"google.golang.org/api/option"
)

// MaxSignedURLLifetime is the longest lifetime a V4 signed URL can have
const MaxSignedURLLifetime = 7 * 24 * time.Hour

// GCS stores attachment files in a Cloud Storage bucket and hands out signed
// GET URLs for them
type GCS struct {
	client     *storage.Client
	bucket     string
	prefix     string
	urlTTL     time.Duration
	clientOpts []option.ClientOption
}

var _ interfaces.BlobStorage = &GCS{}

type Option func(*GCS)

// WithPrefix puts every object under prefix
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

// WithURLLifetime shortens the lifetime of signed URLs
func WithURLLifetime(d time.Duration) Option {
	return func(g *GCS) {
		if d > 0 && d <= MaxSignedURLLifetime {
			g.urlTTL = d
		}
	}
}

// WithClientOptions passes options such as credentials or an emulator
// endpoint to the storage client
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(g *GCS) {
		g.clientOpts = append(g.clientOpts, opts...)
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	g := &GCS{
		bucket: bucket,
		urlTTL: MaxSignedURLLifetime,
	}
	for _, opt := range opts {
		opt(g)
	}

	client, err := storage.NewClient(ctx, g.clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client", goerr.V("bucket", bucket))
	}
	g.client = client

	return g, nil
}

func (g *GCS) objectName(path string) string {
	if g.prefix == "" {
		return path
	}
	return g.prefix + "/" + path
}

func (g *GCS) Put(ctx context.Context, path, contentType string, body []byte) (string, error) {
	name := g.objectName(path)
	bucket := g.client.Bucket(g.bucket)

	w := bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finish object upload", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}

	url, err := bucket.SignedURL(name, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(g.urlTTL),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign object URL", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}

	return url, nil
}

func (g *GCS) Close() error {
	if err := g.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Cloud Storage client")
	}
	return nil
}
