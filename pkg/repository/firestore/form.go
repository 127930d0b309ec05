package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type formDocument struct {
	ID        string             `firestore:"id"`
	OwnerID   string             `firestore:"owner_id"`
	Title     string             `firestore:"title"`
	BaseID    string             `firestore:"base_id"`
	TableID   string             `firestore:"table_id"`
	BaseName  string             `firestore:"base_name"`
	TableName string             `firestore:"table_name"`
	Questions []questionDocument `firestore:"questions"`
	CreatedAt time.Time          `firestore:"created_at"`
	UpdatedAt time.Time          `firestore:"updated_at"`
}

type questionDocument struct {
	QuestionKey       string             `firestore:"question_key"`
	Label             string             `firestore:"label"`
	Type              string             `firestore:"type"`
	Required          bool               `firestore:"required"`
	ExternalFieldID   string             `firestore:"airtable_field_id"`
	ExternalFieldName string             `firestore:"airtable_field_name"`
	Options           []string           `firestore:"options"`
	ConditionalRules  *ruleGroupDocument `firestore:"conditional_rules,omitempty"`
}

type ruleGroupDocument struct {
	Logic      string              `firestore:"logic"`
	Conditions []conditionDocument `firestore:"conditions"`
}

type conditionDocument struct {
	QuestionKey string `firestore:"question_key"`
	Operator    string `firestore:"operator"`
	Value       any    `firestore:"value"`
}

func toFormDocument(f *model.Form) *formDocument {
	doc := &formDocument{
		ID:        f.ID.String(),
		OwnerID:   f.OwnerID.String(),
		Title:     f.Title,
		BaseID:    f.BaseID,
		TableID:   f.TableID,
		BaseName:  f.BaseName,
		TableName: f.TableName,
		Questions: make([]questionDocument, len(f.Questions)),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}

	for i, q := range f.Questions {
		qd := questionDocument{
			QuestionKey:       q.QuestionKey,
			Label:             q.Label,
			Type:              q.Type.String(),
			Required:          q.Required,
			ExternalFieldID:   q.ExternalFieldID,
			ExternalFieldName: q.ExternalFieldName,
			Options:           q.Options,
		}
		if q.ConditionalRules != nil {
			rd := &ruleGroupDocument{
				Logic:      q.ConditionalRules.Logic.String(),
				Conditions: make([]conditionDocument, len(q.ConditionalRules.Conditions)),
			}
			for j, c := range q.ConditionalRules.Conditions {
				rd.Conditions[j] = conditionDocument{
					QuestionKey: c.QuestionKey,
					Operator:    c.Operator.String(),
					Value:       c.Value,
				}
			}
			qd.ConditionalRules = rd
		}
		doc.Questions[i] = qd
	}

	return doc
}

func toFormModel(doc *formDocument) *model.Form {
	f := &model.Form{
		ID:        model.FormID(doc.ID),
		OwnerID:   model.UserID(doc.OwnerID),
		Title:     doc.Title,
		BaseID:    doc.BaseID,
		TableID:   doc.TableID,
		BaseName:  doc.BaseName,
		TableName: doc.TableName,
		Questions: make([]model.Question, len(doc.Questions)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	for i, qd := range doc.Questions {
		q := model.Question{
			QuestionKey:       qd.QuestionKey,
			Label:             qd.Label,
			Type:              types.QuestionType(qd.Type),
			Required:          qd.Required,
			ExternalFieldID:   qd.ExternalFieldID,
			ExternalFieldName: qd.ExternalFieldName,
			Options:           qd.Options,
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		if qd.ConditionalRules != nil {
			rules := &model.RuleGroup{
				Logic:      types.RuleLogic(qd.ConditionalRules.Logic).OrDefault(),
				Conditions: make([]model.Condition, len(qd.ConditionalRules.Conditions)),
			}
			for j, cd := range qd.ConditionalRules.Conditions {
				rules.Conditions[j] = model.Condition{
					QuestionKey: cd.QuestionKey,
					Operator:    types.RuleOperator(cd.Operator),
					Value:       cd.Value,
				}
			}
			q.ConditionalRules = rules
		}
		f.Questions[i] = q
	}

	return f
}

type formRepository struct {
	client     *firestore.Client
	collection string
}

func (r *formRepository) Create(ctx context.Context, form *model.Form) (*model.Form, error) {
	now := time.Now().UTC()
	created := *form
	if created.ID == "" {
		created.ID = model.FormID(uuid.NewString())
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	docRef := r.client.Collection(r.collection).Doc(created.ID.String())
	if _, err := docRef.Create(ctx, toFormDocument(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create form", goerr.V("id", created.ID))
	}

	return toFormModel(toFormDocument(&created)), nil
}

func (r *formRepository) Get(ctx context.Context, id model.FormID) (*model.Form, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get form", goerr.V("id", id))
	}

	var doc formDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal form", goerr.V("id", id))
	}

	return toFormModel(&doc), nil
}

func (r *formRepository) ListByOwner(ctx context.Context, owner model.UserID) ([]*model.Form, error) {
	query := r.client.Collection(r.collection).
		Where("owner_id", "==", owner.String()).
		OrderBy("created_at", firestore.Desc)
	return r.list(ctx, query)
}

func (r *formRepository) List(ctx context.Context) ([]*model.Form, error) {
	query := r.client.Collection(r.collection).OrderBy("created_at", firestore.Desc)
	return r.list(ctx, query)
}

func (r *formRepository) list(ctx context.Context, query firestore.Query) ([]*model.Form, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	forms := []*model.Form{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate forms")
		}

		var formDoc formDocument
		if err := doc.DataTo(&formDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal form", goerr.V("id", doc.Ref.ID))
		}
		forms = append(forms, toFormModel(&formDoc))
	}

	return forms, nil
}

func (r *formRepository) Update(ctx context.Context, form *model.Form) (*model.Form, error) {
	docRef := r.client.Collection(r.collection).Doc(form.ID.String())

	var updated *model.Form
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", form.ID))
			}
			return goerr.Wrap(err, "failed to get form for update", goerr.V("id", form.ID))
		}

		var existing formDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal form", goerr.V("id", form.ID))
		}

		next := *form
		next.OwnerID = model.UserID(existing.OwnerID)
		next.CreatedAt = existing.CreatedAt
		next.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, toFormDocument(&next)); err != nil {
			return goerr.Wrap(err, "failed to update form", goerr.V("id", form.ID))
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toFormModel(toFormDocument(updated)), nil
}

func (r *formRepository) Delete(ctx context.Context, id model.FormID) error {
	docRef := r.client.Collection(r.collection).Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get form for deletion", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete form", goerr.V("id", id))
	}

	return nil
}
