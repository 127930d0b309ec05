package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
	"github.com/secmon-lab/airform/pkg/domain/types"
	"github.com/secmon-lab/airform/pkg/repository/memory"
	"github.com/secmon-lab/airform/pkg/usecase"
	"golang.org/x/oauth2"
)

// fakeAirtable serves one base with the tables it holds
type fakeAirtable struct {
	mu      sync.Mutex
	me      interfaces.AirtableWhoAmI
	bases   []interfaces.AirtableBase
	tables  map[string][]model.Table
	records map[string]map[string]any
	err     error
	nextID  int
}

var _ interfaces.AirtableService = &fakeAirtable{}

func newFakeAirtable() *fakeAirtable {
	return &fakeAirtable{
		me:    interfaces.AirtableWhoAmI{ID: "usrOwner", Email: "owner@example.com"},
		bases: []interfaces.AirtableBase{{ID: "app1", Name: "Hiring"}},
		tables: map[string][]model.Table{
			"app1": {{ID: "tbl1", Name: "Applicants", Fields: sampleFields()}},
		},
		records: map[string]map[string]any{},
	}
}

func sampleFields() []model.TableField {
	return []model.TableField{
		{ID: "fldName", Name: "Name", Type: types.AirtableSingleLineText},
		{ID: "fldRole", Name: "Role", Type: types.AirtableSingleSelect, Options: &model.FieldOptions{
			Choices: []model.FieldChoice{{Name: "Engineer"}, {Name: "Designer"}},
		}},
		{ID: "fldSkills", Name: "Skills", Type: types.AirtableMultipleSelects, Options: &model.FieldOptions{
			Choices: []model.FieldChoice{{Name: "Go"}, {Name: "SQL"}},
		}},
		{ID: "fldCV", Name: "CV", Type: types.AirtableMultipleAttachments},
		{ID: "fldAge", Name: "Age", Type: "number"},
	}
}

func (f *fakeAirtable) WhoAmI(ctx context.Context) (*interfaces.AirtableWhoAmI, error) {
	if f.err != nil {
		return nil, f.err
	}
	me := f.me
	return &me, nil
}

func (f *fakeAirtable) ListBases(ctx context.Context) ([]interfaces.AirtableBase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bases, nil
}

func (f *fakeAirtable) ListTables(ctx context.Context, baseID string) ([]model.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[baseID], nil
}

func (f *fakeAirtable) GetTable(ctx context.Context, baseID, tableID string) (*model.Table, error) {
	tables, err := f.ListTables(ctx, baseID)
	if err != nil {
		return nil, err
	}
	return model.FindTable(tables, tableID), nil
}

func (f *fakeAirtable) CreateBase(ctx context.Context, workspaceID, name string, tables []model.Table) (*interfaces.AirtableBase, error) {
	if f.err != nil {
		return nil, f.err
	}
	base := interfaces.AirtableBase{ID: "appNew", Name: name}
	f.bases = append(f.bases, base)
	return &base, nil
}

func (f *fakeAirtable) CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("rec%03d", f.nextID)
	f.records[id] = fields
	return id, nil
}

func (f *fakeAirtable) RecordExists(ctx context.Context, baseID, tableID, recordID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[recordID]
	return ok, nil
}

// fakeFactory hands out the same fake to every user holding credentials
type fakeFactory struct {
	svc *fakeAirtable
}

func (f *fakeFactory) ForUser(ctx context.Context, user *model.User) (interfaces.AirtableService, error) {
	if !user.Tokens.HasAccessToken() {
		return nil, goerr.New("no credentials")
	}
	return f.svc, nil
}

func (f *fakeFactory) ForToken(ctx context.Context, token *oauth2.Token) interfaces.AirtableService {
	return f.svc
}

type fakeOAuth struct {
	err error
}

func (f *fakeOAuth) AuthURL(state, verifier string) string {
	return "https://airtable.example/authorize?state=" + state + "&verifier=" + verifier
}

func (f *fakeOAuth) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh-" + code}, nil
}

type fakeStorage struct {
	paths []string
}

func (f *fakeStorage) Put(ctx context.Context, path, contentType string, body []byte) (string, error) {
	f.paths = append(f.paths, path)
	return "https://storage.example/" + path, nil
}

type testEnv struct {
	repo     *memory.Memory
	airtable *fakeAirtable
	uc       *usecase.UseCases
	owner    *model.User
	ctx      context.Context
}

func newTestEnv(t *testing.T, opts ...usecase.Option) *testEnv {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()
	svc := newFakeAirtable()

	owner, err := repo.User().Upsert(ctx, &model.User{
		AirtableUserID: "usrOwner",
		Email:          "owner@example.com",
		Tokens:         model.OAuthTokens{AccessToken: "owner-token"},
	})
	gt.NoError(t, err).Required()

	return &testEnv{
		repo:     repo,
		airtable: svc,
		uc:       usecase.New(repo, &fakeFactory{svc: svc}, opts...),
		owner:    owner,
		ctx:      auth.ContextWithToken(ctx, auth.NewToken(owner.ID, owner.AirtableUserID, owner.Email, owner.Name)),
	}
}

func sampleInput() usecase.CreateFormInput {
	return usecase.CreateFormInput{
		Title:   "Application",
		BaseID:  "app1",
		TableID: "tbl1",
		Questions: []model.RawQuestion{
			{QuestionKey: "name", ExternalFieldID: "fldName", Label: "Name", Required: true},
			{QuestionKey: "role", ExternalFieldID: "fldRole", Label: "Role", Required: true},
			{
				QuestionKey:     "skills",
				ExternalFieldID: "fldSkills",
				Label:           "Skills",
				Required:        true,
				ConditionalRules: map[string]any{
					"conditions": []any{
						map[string]any{"questionKey": "role", "operator": "equals", "value": "Engineer"},
					},
				},
			},
			{QuestionKey: "cv", ExternalFieldID: "fldCV", Label: "CV"},
		},
	}
}
