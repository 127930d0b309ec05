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

type formRepository struct {
	mu    sync.RWMutex
	forms map[model.FormID]*model.Form
}

func newFormRepository() *formRepository {
	return &formRepository{
		forms: make(map[model.FormID]*model.Form),
	}
}

func (r *formRepository) Create(ctx context.Context, form *model.Form) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyForm(form)
	if created.ID == "" {
		created.ID = model.FormID(uuid.NewString())
	}
	if _, exists := r.forms[created.ID]; exists {
		return nil, goerr.New("form already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.forms[created.ID] = created
	return copyForm(created), nil
}

func (r *formRepository) Get(ctx context.Context, id model.FormID) (*model.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	form, exists := r.forms[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}

	return copyForm(form), nil
}

func (r *formRepository) ListByOwner(ctx context.Context, owner model.UserID) ([]*model.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	forms := make([]*model.Form, 0)
	for _, form := range r.forms {
		if form.OwnerID == owner {
			forms = append(forms, copyForm(form))
		}
	}
	sortFormsNewestFirst(forms)

	return forms, nil
}

func (r *formRepository) List(ctx context.Context) ([]*model.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	forms := make([]*model.Form, 0, len(r.forms))
	for _, form := range r.forms {
		forms = append(forms, copyForm(form))
	}
	sortFormsNewestFirst(forms)

	return forms, nil
}

func (r *formRepository) Update(ctx context.Context, form *model.Form) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.forms[form.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", form.ID))
	}

	updated := copyForm(form)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.forms[updated.ID] = updated
	return copyForm(updated), nil
}

func (r *formRepository) Delete(ctx context.Context, id model.FormID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[id]; !exists {
		return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}

	delete(r.forms, id)
	return nil
}

func sortFormsNewestFirst(forms []*model.Form) {
	sort.SliceStable(forms, func(i, j int) bool {
		if forms[i].CreatedAt.Equal(forms[j].CreatedAt) {
			return forms[i].ID > forms[j].ID
		}
		return forms[i].CreatedAt.After(forms[j].CreatedAt)
	})
}
