package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/repository/memory"
	"github.com/secmon-lab/airform/pkg/service/worker"
	"golang.org/x/oauth2"
)

// mockAirtable knows which records still exist
type mockAirtable struct {
	interfaces.AirtableService

	mu      sync.Mutex
	records map[string]bool
	err     error
	calls   int
}

func (m *mockAirtable) RecordExists(ctx context.Context, baseID, tableID, recordID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.records[recordID], nil
}

func (m *mockAirtable) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockFactory struct {
	svc *mockAirtable
}

func (f *mockFactory) ForUser(ctx context.Context, user *model.User) (interfaces.AirtableService, error) {
	return f.svc, nil
}

func (f *mockFactory) ForToken(ctx context.Context, token *oauth2.Token) interfaces.AirtableService {
	return f.svc
}

func setupResponses(t *testing.T, repo *memory.Memory, recordIDs ...string) *model.Form {
	t.Helper()
	ctx := context.Background()

	owner, err := repo.User().Upsert(ctx, &model.User{
		AirtableUserID: "usrOwner",
		Tokens:         model.OAuthTokens{AccessToken: "token"},
	})
	gt.NoError(t, err).Required()

	form, err := repo.Form().Create(ctx, &model.Form{
		OwnerID: owner.ID,
		Title:   "Application",
		BaseID:  "app1",
		TableID: "tbl1",
	})
	gt.NoError(t, err).Required()

	for _, id := range recordIDs {
		_, err := repo.Response().Create(ctx, &model.Response{
			FormID:   form.ID,
			RecordID: id,
			Answers:  model.Answers{"name": id},
		})
		gt.NoError(t, err).Required()
	}
	return form
}

func TestResponseSyncWorker_Sync(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	form := setupResponses(t, repo, "recLive", "recGone1", "recGone2")

	svc := &mockAirtable{records: map[string]bool{"recLive": true}}
	w := worker.NewResponseSyncWorker(repo, &mockFactory{svc: svc}, time.Hour, worker.WithConcurrency(2))

	result, err := w.Sync(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Forms).Equal(1)
	gt.Value(t, result.Checked).Equal(3)
	gt.Value(t, result.Deleted).Equal(2)
	gt.Value(t, result.Failed).Equal(0)

	responses, err := repo.Response().ListByForm(ctx, form.ID)
	gt.NoError(t, err).Required()
	for _, resp := range responses {
		gt.Value(t, resp.DeletedInAirtable).Equal(resp.RecordID != "recLive")
	}

	t.Run("deleted responses are not checked again", func(t *testing.T) {
		before := svc.callCount()
		result, err := w.Sync(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Checked).Equal(1)
		gt.Value(t, svc.callCount()-before).Equal(1)
	})
}

func TestResponseSyncWorker_SyncKeepsGoingOnError(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	form := setupResponses(t, repo, "recA")

	svc := &mockAirtable{err: goerr.New("rate limited")}
	w := worker.NewResponseSyncWorker(repo, &mockFactory{svc: svc}, time.Hour)

	result, err := w.Sync(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Failed).Equal(1)

	responses, err := repo.Response().ListByForm(ctx, form.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, responses[0].DeletedInAirtable).False()
}

func TestResponseSyncWorker_StartStop(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	form := setupResponses(t, repo, "recGone")

	svc := &mockAirtable{records: map[string]bool{}}
	w := worker.NewResponseSyncWorker(repo, &mockFactory{svc: svc}, time.Hour)

	gt.NoError(t, w.Start(ctx)).Required()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := repo.Response().ListByForm(ctx, form.ID)
		gt.NoError(t, err).Required()
		if resp[0].DeletedInAirtable {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial sync did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w.Stop()
}
