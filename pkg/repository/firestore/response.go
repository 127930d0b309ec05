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

type responseDocument struct {
	ID                string         `firestore:"id"`
	FormID            string         `firestore:"form_id"`
	RecordID          string         `firestore:"airtable_record_id"`
	Answers           map[string]any `firestore:"answers"`
	Status            string         `firestore:"status"`
	DeletedInAirtable bool           `firestore:"deleted_in_airtable"`
	CreatedAt         time.Time      `firestore:"created_at"`
	UpdatedAt         time.Time      `firestore:"updated_at"`
}

func toResponseDocument(r *model.Response) *responseDocument {
	return &responseDocument{
		ID:                r.ID.String(),
		FormID:            r.FormID.String(),
		RecordID:          r.RecordID,
		Answers:           r.Answers,
		Status:            r.Status.String(),
		DeletedInAirtable: r.DeletedInAirtable,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toResponseModel(doc *responseDocument) *model.Response {
	return &model.Response{
		ID:                model.ResponseID(doc.ID),
		FormID:            model.FormID(doc.FormID),
		RecordID:          doc.RecordID,
		Answers:           model.Answers(doc.Answers),
		Status:            types.ResponseStatus(doc.Status).OrDefault(),
		DeletedInAirtable: doc.DeletedInAirtable,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

type responseRepository struct {
	client     *firestore.Client
	collection string
}

func (r *responseRepository) Create(ctx context.Context, response *model.Response) (*model.Response, error) {
	if response.FormID == "" {
		return nil, goerr.New("response has no form ID")
	}

	now := time.Now().UTC()
	created := *response
	if created.ID == "" {
		created.ID = model.ResponseID(uuid.NewString())
	}
	created.Status = created.Status.OrDefault()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	docRef := r.client.Collection(r.collection).Doc(created.ID.String())
	if _, err := docRef.Create(ctx, toResponseDocument(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create response",
			goerr.V("form_id", created.FormID), goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *responseRepository) Get(ctx context.Context, formID model.FormID, id model.ResponseID) (*model.Response, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "response not found",
				goerr.V("form_id", formID), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get response", goerr.V("id", id))
	}

	var doc responseDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", id))
	}
	if doc.FormID != formID.String() {
		return nil, goerr.Wrap(ErrNotFound, "response not found",
			goerr.V("form_id", formID), goerr.V("id", id))
	}

	return toResponseModel(&doc), nil
}

func (r *responseRepository) ListByForm(ctx context.Context, formID model.FormID) ([]*model.Response, error) {
	iter := r.client.Collection(r.collection).
		Where("form_id", "==", formID.String()).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	responses := []*model.Response{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate responses", goerr.V("form_id", formID))
		}

		var responseDoc responseDocument
		if err := doc.DataTo(&responseDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", doc.Ref.ID))
		}
		responses = append(responses, toResponseModel(&responseDoc))
	}

	return responses, nil
}

func (r *responseRepository) MarkDeleted(ctx context.Context, formID model.FormID, id model.ResponseID) error {
	if _, err := r.Get(ctx, formID, id); err != nil {
		return err
	}

	_, err := r.client.Collection(r.collection).Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "deleted_in_airtable", Value: true},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to mark response deleted",
			goerr.V("form_id", formID), goerr.V("id", id))
	}

	return nil
}
