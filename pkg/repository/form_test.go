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

func newTestForm(owner model.UserID, title string) *model.Form {
	return &model.Form{
		OwnerID:   owner,
		Title:     title,
		BaseID:    "appBase",
		TableID:   "tblTable",
		BaseName:  "Hiring",
		TableName: "Applicants",
		Questions: []model.Question{
			{
				QuestionKey:       "role",
				Label:             "Role",
				Type:              types.QuestionTypeSingleSelect,
				Required:          true,
				ExternalFieldID:   "fldRole",
				ExternalFieldName: "Role",
				Options:           []string{"Engineer", "Designer"},
			},
			{
				QuestionKey:       "github",
				Label:             "GitHub",
				Type:              types.QuestionTypeShortText,
				ExternalFieldID:   "fldGitHub",
				ExternalFieldName: "GitHub",
				Options:           []string{},
				ConditionalRules: &model.RuleGroup{
					Logic: types.RuleLogicOr,
					Conditions: []model.Condition{
						{QuestionKey: "role", Operator: types.RuleOperatorEquals, Value: "Engineer"},
						{QuestionKey: "role", Operator: types.RuleOperatorNotEquals, Value: nil},
					},
				},
			},
		},
	}
}

func runFormRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get form", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := model.UserID(uuid.NewString())

		created, err := repo.Form().Create(ctx, newTestForm(owner, "Apply"))
		gt.NoError(t, err).Required()
		gt.String(t, created.ID.String()).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Form().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Apply")
		gt.Value(t, got.OwnerID).Equal(owner)
		gt.Value(t, got.TableName).Equal("Applicants")
		gt.Array(t, got.Questions).Length(2).Required()
		gt.Value(t, got.Questions[0].Options).Equal([]string{"Engineer", "Designer"})

		rules := got.Questions[1].ConditionalRules
		gt.Value(t, rules).NotNil().Required()
		gt.Value(t, rules.Logic).Equal(types.RuleLogicOr)
		gt.Array(t, rules.Conditions).Length(2).Required()
		gt.Value(t, rules.Conditions[0].Value).Equal(any("Engineer"))
		gt.Value(t, rules.Conditions[1].Value).Equal(nil)
		gt.Value(t, got.Questions[0].ConditionalRules).Nil()
	})

	t.Run("Get returns copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Form().Create(ctx, newTestForm(model.UserID(uuid.NewString()), "Copy"))
		gt.NoError(t, err).Required()

		got, err := repo.Form().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		got.Questions[0].Options[0] = "Mutated"

		again, err := repo.Form().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Questions[0].Options[0]).Equal("Engineer")
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Form().Get(context.Background(), model.FormID(uuid.NewString()))
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("ListByOwner returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := model.UserID(uuid.NewString())
		base := time.Now().UTC().Truncate(time.Millisecond)

		for i, title := range []string{"old", "new", "middle"} {
			f := newTestForm(owner, title)
			f.CreatedAt = base.Add([]time.Duration{0, 2 * time.Hour, time.Hour}[i])
			_, err := repo.Form().Create(ctx, f)
			gt.NoError(t, err).Required()
		}
		_, err := repo.Form().Create(ctx, newTestForm(model.UserID(uuid.NewString()), "someone else"))
		gt.NoError(t, err).Required()

		forms, err := repo.Form().ListByOwner(ctx, owner)
		gt.NoError(t, err).Required()
		gt.Array(t, forms).Length(3).Required()
		gt.Value(t, forms[0].Title).Equal("new")
		gt.Value(t, forms[1].Title).Equal("middle")
		gt.Value(t, forms[2].Title).Equal("old")
	})

	t.Run("ListByOwner without forms", func(t *testing.T) {
		repo := newRepo(t)
		forms, err := repo.Form().ListByOwner(context.Background(), model.UserID(uuid.NewString()))
		gt.NoError(t, err).Required()
		gt.Array(t, forms).Length(0)
	})

	t.Run("Update keeps owner and creation time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := model.UserID(uuid.NewString())

		created, err := repo.Form().Create(ctx, newTestForm(owner, "Before"))
		gt.NoError(t, err).Required()

		changed := *created
		changed.Title = "After"
		changed.OwnerID = "intruder"
		updated, err := repo.Form().Update(ctx, &changed)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("After")
		gt.Value(t, updated.OwnerID).Equal(owner)

		got, err := repo.Form().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("After")
		gt.Bool(t, got.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Update not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Form().Update(context.Background(), &model.Form{ID: model.FormID(uuid.NewString())})
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Delete form", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Form().Create(ctx, newTestForm(model.UserID(uuid.NewString()), "Gone"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Form().Delete(ctx, created.ID)).Required()
		_, err = repo.Form().Get(ctx, created.ID)
		gt.Bool(t, isNotFound(err)).True()

		gt.Bool(t, isNotFound(repo.Form().Delete(ctx, created.ID))).True()
	})
}
