package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/service/storage"
	"github.com/secmon-lab/airform/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage configures the Cloud Storage bucket for attachment uploads
type Storage struct {
	bucket      string
	prefix      string
	urlLifetime time.Duration
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for attachment uploads (uploads are disabled when empty)",
			Category:    "Storage",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("AIRFORM_STORAGE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("AIRFORM_STORAGE_PREFIX"),
		},
		&cli.DurationFlag{
			Name:        "storage-url-lifetime",
			Usage:       "Lifetime of signed attachment URLs (at most 168h)",
			Category:    "Storage",
			Value:       storage.MaxSignedURLLifetime,
			Destination: &x.urlLifetime,
			Sources:     cli.EnvVars("AIRFORM_STORAGE_URL_LIFETIME"),
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.Duration("url-lifetime", x.urlLifetime),
	)
}

// IsEnabled reports whether a bucket is configured
func (x *Storage) IsEnabled() bool {
	return x.bucket != ""
}

// Configure returns nil without error when no bucket is configured. The
// caller closes the returned client.
func (x *Storage) Configure(ctx context.Context) (*storage.GCS, error) {
	if !x.IsEnabled() {
		logging.Default().Info("Storage bucket not configured, attachment uploads are disabled")
		return nil, nil
	}

	opts := []storage.Option{storage.WithPrefix(x.prefix)}
	if x.urlLifetime > 0 {
		opts = append(opts, storage.WithURLLifetime(x.urlLifetime))
	}

	gcs, err := storage.New(ctx, x.bucket, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize storage", goerr.V("bucket", x.bucket))
	}
	logging.Default().Info("Attachment uploads enabled", "storage", x)
	return gcs, nil
}
