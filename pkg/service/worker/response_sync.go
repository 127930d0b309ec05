package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSyncInterval    = 30 * time.Minute
	DefaultSyncConcurrency = 4
)

// ResponseSyncWorker flags responses whose Airtable record was deleted
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Records are checked with the form owner's credentials
type ResponseSyncWorker struct {
	repo        interfaces.Repository
	airtable    interfaces.AirtableFactory
	interval    time.Duration
	concurrency int
	stopCh      chan struct{}
	doneCh      chan struct{}
}

type Option func(*ResponseSyncWorker)

// WithConcurrency bounds the record lookups running at once
func WithConcurrency(n int) Option {
	return func(w *ResponseSyncWorker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func NewResponseSyncWorker(repo interfaces.Repository, airtable interfaces.AirtableFactory, interval time.Duration, opts ...Option) *ResponseSyncWorker {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	w := &ResponseSyncWorker{
		repo:        repo,
		airtable:    airtable,
		interval:    interval,
		concurrency: DefaultSyncConcurrency,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background sync loop without blocking server startup
func (w *ResponseSyncWorker) Start(ctx context.Context) error {
	logging.Default().Info("response sync worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ResponseSyncWorker) Stop() {
	logging.Default().Info("response sync worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("response sync worker stopped")
}

func (w *ResponseSyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.Sync(ctx); err != nil {
		logging.Default().Error("initial response sync failed (will retry next interval)", "error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Sync(ctx); err != nil {
				logging.Default().Error("response sync failed (will retry next interval)", "error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("response sync worker context cancelled")
			return
		}
	}
}

// SyncResult counts what one sync cycle did
type SyncResult struct {
	Forms   int
	Checked int
	Deleted int
	Failed  int
}

// Sync runs one cycle over every form. A form that cannot be checked is
// logged and skipped.
func (w *ResponseSyncWorker) Sync(ctx context.Context) (*SyncResult, error) {
	startTime := time.Now()

	forms, err := w.repo.Form().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list forms")
	}

	result := &SyncResult{Forms: len(forms)}
	for _, form := range forms {
		if err := w.syncForm(ctx, form, result); err != nil {
			result.Failed++
			logging.Default().Warn("failed to sync form responses",
				"form_id", form.ID, "error", err.Error())
		}
	}

	logging.Default().Info("response sync completed",
		"forms", result.Forms,
		"checked", result.Checked,
		"deleted", result.Deleted,
		"failed", result.Failed,
		"duration", time.Since(startTime).String())

	return result, nil
}

func (w *ResponseSyncWorker) syncForm(ctx context.Context, form *model.Form, result *SyncResult) error {
	responses, err := w.repo.Response().ListByForm(ctx, form.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to list responses")
	}

	var pending []*model.Response
	for _, resp := range responses {
		if !resp.DeletedInAirtable && resp.RecordID != "" {
			pending = append(pending, resp)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	owner, err := w.repo.User().Get(ctx, form.OwnerID)
	if err != nil {
		return goerr.Wrap(err, "failed to get form owner", goerr.V("owner_id", form.OwnerID))
	}
	svc, err := w.airtable.ForUser(ctx, owner)
	if err != nil {
		return goerr.Wrap(err, "failed to build Airtable client", goerr.V("owner_id", form.OwnerID))
	}

	var checked, deleted atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(w.concurrency)

	for _, resp := range pending {
		eg.Go(func() error {
			exists, err := svc.RecordExists(egCtx, form.BaseID, form.TableID, resp.RecordID)
			if err != nil {
				return goerr.Wrap(err, "failed to check record", goerr.V("record_id", resp.RecordID))
			}
			checked.Add(1)
			if exists {
				return nil
			}

			if err := w.repo.Response().MarkDeleted(egCtx, form.ID, resp.ID); err != nil {
				return goerr.Wrap(err, "failed to mark response deleted", goerr.V("response_id", resp.ID))
			}
			deleted.Add(1)
			logging.Default().Info("Airtable record of response was deleted",
				"form_id", form.ID, "response_id", resp.ID, "record_id", resp.RecordID)
			return nil
		})
	}

	err = eg.Wait()
	result.Checked += int(checked.Load())
	result.Deleted += int(deleted.Load())
	return err
}
