package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

type responseRepository struct {
	mu        sync.RWMutex
	responses map[model.FormID]map[model.ResponseID]*model.Response
}

func newResponseRepository() *responseRepository {
	return &responseRepository{
		responses: make(map[model.FormID]map[model.ResponseID]*model.Response),
	}
}

func (r *responseRepository) Create(ctx context.Context, response *model.Response) (*model.Response, error) {
	if response.FormID == "" {
		return nil, goerr.New("response has no form ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyResponse(response)
	if created.ID == "" {
		created.ID = model.ResponseID(uuid.NewString())
	}
	created.Status = created.Status.OrDefault()

	byForm, ok := r.responses[created.FormID]
	if !ok {
		byForm = make(map[model.ResponseID]*model.Response)
		r.responses[created.FormID] = byForm
	}
	if _, exists := byForm[created.ID]; exists {
		return nil, goerr.New("response already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	byForm[created.ID] = created
	return copyResponse(created), nil
}

func (r *responseRepository) Get(ctx context.Context, formID model.FormID, id model.ResponseID) (*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	response, exists := r.responses[formID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "response not found",
			goerr.V("form_id", formID), goerr.V("id", id))
	}

	return copyResponse(response), nil
}

func (r *responseRepository) ListByForm(ctx context.Context, formID model.FormID) ([]*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	responses := make([]*model.Response, 0, len(r.responses[formID]))
	for _, response := range r.responses[formID] {
		responses = append(responses, copyResponse(response))
	}

	sort.SliceStable(responses, func(i, j int) bool {
		if responses[i].CreatedAt.Equal(responses[j].CreatedAt) {
			return responses[i].ID > responses[j].ID
		}
		return responses[i].CreatedAt.After(responses[j].CreatedAt)
	})

	return responses, nil
}

func (r *responseRepository) MarkDeleted(ctx context.Context, formID model.FormID, id model.ResponseID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	response, exists := r.responses[formID][id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "response not found",
			goerr.V("form_id", formID), goerr.V("id", id))
	}

	response.DeletedInAirtable = true
	response.UpdatedAt = time.Now().UTC()
	return nil
}

