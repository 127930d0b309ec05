package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
)

func runResponseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get response", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := model.FormID(uuid.NewString())

		created, err := repo.Response().Create(ctx, &model.Response{
			FormID:   formID,
			RecordID: "recABC",
			Answers: model.Answers{
				"name":   "Alice",
				"skills": []any{"Go", "Rust"},
				"cv":     []any{map[string]any{"url": "https://x/cv.pdf", "filename": "cv.pdf"}},
			},
		})
		gt.NoError(t, err).Required()
		gt.String(t, created.ID.String()).NotEqual("")
		gt.Value(t, created.Status).Equal(types.ResponseStatusSubmitted)

		got, err := repo.Response().Get(ctx, formID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.RecordID).Equal("recABC")
		gt.Value(t, got.Answers["name"]).Equal(any("Alice"))
		gt.Value(t, got.Answers["skills"]).Equal(any([]any{"Go", "Rust"}))
		gt.Value(t, got.Answers["cv"]).Equal(any([]any{map[string]any{"url": "https://x/cv.pdf", "filename": "cv.pdf"}}))
		gt.Bool(t, got.DeletedInAirtable).False()
	})

	t.Run("Create requires a form", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Response().Create(context.Background(), &model.Response{RecordID: "rec"})
		gt.Value(t, err).NotNil()
	})

	t.Run("Get is scoped by form", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Response().Create(ctx, &model.Response{
			FormID:   model.FormID(uuid.NewString()),
			RecordID: "rec1",
			Answers:  model.Answers{"a": "b"},
		})
		gt.NoError(t, err).Required()

		_, err = repo.Response().Get(ctx, model.FormID(uuid.NewString()), created.ID)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("ListByForm returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := model.FormID(uuid.NewString())
		base := time.Now().UTC().Truncate(time.Millisecond)

		for i, rec := range []string{"rec1", "rec3", "rec2"} {
			_, err := repo.Response().Create(ctx, &model.Response{
				FormID:    formID,
				RecordID:  rec,
				Answers:   model.Answers{"n": float64(i)},
				CreatedAt: base.Add([]time.Duration{0, 2 * time.Minute, time.Minute}[i]),
			})
			gt.NoError(t, err).Required()
		}
		_, err := repo.Response().Create(ctx, &model.Response{
			FormID:   model.FormID(uuid.NewString()),
			RecordID: "other",
			Answers:  model.Answers{},
		})
		gt.NoError(t, err).Required()

		responses, err := repo.Response().ListByForm(ctx, formID)
		gt.NoError(t, err).Required()
		gt.Array(t, responses).Length(3).Required()
		gt.Value(t, responses[0].RecordID).Equal("rec3")
		gt.Value(t, responses[1].RecordID).Equal("rec2")
		gt.Value(t, responses[2].RecordID).Equal("rec1")
	})

	t.Run("MarkDeleted flags the response", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		formID := model.FormID(uuid.NewString())

		created, err := repo.Response().Create(ctx, &model.Response{
			FormID:   formID,
			RecordID: "recGone",
			Answers:  model.Answers{"a": "b"},
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Response().MarkDeleted(ctx, formID, created.ID)).Required()

		got, err := repo.Response().Get(ctx, formID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.DeletedInAirtable).True()
		gt.Value(t, got.Answers["a"]).Equal(any("b"))
	})

	t.Run("MarkDeleted not found", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Response().MarkDeleted(context.Background(),
			model.FormID(uuid.NewString()), model.ResponseID(uuid.NewString()))
		gt.Bool(t, isNotFound(err)).True()
	})
}
