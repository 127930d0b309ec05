package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

// AirtableUseCase exposes the bases and tables of the signed in user
type AirtableUseCase struct {
	uc *UseCases
}

func (x *AirtableUseCase) Me(ctx context.Context) (*interfaces.AirtableWhoAmI, error) {
	svc, _, err := x.uc.currentService(ctx)
	if err != nil {
		return nil, err
	}

	me, err := svc.WhoAmI(ctx)
	if err != nil {
		return nil, upstream(err, "Failed to fetch Airtable user")
	}
	return me, nil
}

func (x *AirtableUseCase) Bases(ctx context.Context) ([]interfaces.AirtableBase, error) {
	svc, _, err := x.uc.currentService(ctx)
	if err != nil {
		return nil, err
	}

	bases, err := svc.ListBases(ctx)
	if err != nil {
		return nil, upstream(err, "Failed to fetch Airtable bases")
	}
	if bases == nil {
		bases = []interfaces.AirtableBase{}
	}
	return bases, nil
}

func (x *AirtableUseCase) Tables(ctx context.Context, baseID string) ([]model.Table, error) {
	svc, _, err := x.uc.currentService(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := svc.ListTables(ctx, baseID)
	if err != nil {
		return nil, upstream(goerr.Wrap(err, "failed to list tables", goerr.V(BaseIDKey, baseID)),
			"Failed to fetch Airtable tables")
	}
	return tables, nil
}

// Fields returns the fields of a table that can back a question
func (x *AirtableUseCase) Fields(ctx context.Context, baseID, tableID string) ([]model.SupportedField, error) {
	svc, _, err := x.uc.currentService(ctx)
	if err != nil {
		return nil, err
	}

	table, err := svc.GetTable(ctx, baseID, tableID)
	if err != nil {
		return nil, upstream(goerr.Wrap(err, "failed to get table",
			goerr.V(BaseIDKey, baseID), goerr.V(TableIDKey, tableID)),
			"Failed to fetch Airtable fields")
	}
	if table == nil {
		return nil, newError(ErrNotFound, "Table not found", nil)
	}

	return model.SupportedFields(table.Fields), nil
}

// CreateBaseInput is the request to create a new Airtable base
type CreateBaseInput struct {
	WorkspaceID string        `json:"workspaceId"`
	Name        string        `json:"name"`
	Tables      []model.Table `json:"tables"`
}

// CreateBase creates a base. Without tables it gets one default table.
func (x *AirtableUseCase) CreateBase(ctx context.Context, input CreateBaseInput) (*interfaces.AirtableBase, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, newError(ErrValidation, "name is required", nil)
	}

	svc, _, err := x.uc.currentService(ctx)
	if err != nil {
		return nil, err
	}

	base, err := svc.CreateBase(ctx, input.WorkspaceID, input.Name, input.Tables)
	if err != nil {
		return nil, upstream(err, "Failed to create Airtable base")
	}
	return base, nil
}
