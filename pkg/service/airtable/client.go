package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
	"github.com/secmon-lab/airform/pkg/utils/safe"
)

// DefaultBaseURL is the Airtable Web API root
const DefaultBaseURL = "https://api.airtable.com"

// client implements interfaces.AirtableService
type client struct {
	httpClient *http.Client
	baseURL    string
}

var _ interfaces.AirtableService = &client{}

type Option func(*client)

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// New creates an Airtable service. httpClient must authenticate requests,
// typically one built by oauth2.NewClient.
func New(httpClient *http.Client, opts ...Option) interfaces.AirtableService {
	c := &client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) WhoAmI(ctx context.Context) (*interfaces.AirtableWhoAmI, error) {
	var resp interfaces.AirtableWhoAmI
	if err := c.do(ctx, http.MethodGet, "/v0/meta/whoami", nil, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to get Airtable user")
	}
	return &resp, nil
}

func (c *client) ListBases(ctx context.Context) ([]interfaces.AirtableBase, error) {
	bases := []interfaces.AirtableBase{}
	offset := ""

	for {
		path := "/v0/meta/bases"
		if offset != "" {
			path += "?offset=" + url.QueryEscape(offset)
		}

		var resp struct {
			Bases  []interfaces.AirtableBase `json:"bases"`
			Offset string                    `json:"offset"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, goerr.Wrap(err, "failed to list Airtable bases")
		}
		bases = append(bases, resp.Bases...)

		if resp.Offset == "" {
			return bases, nil
		}
		offset = resp.Offset
	}
}

func (c *client) ListTables(ctx context.Context, baseID string) ([]model.Table, error) {
	var resp struct {
		Tables []model.Table `json:"tables"`
	}
	path := "/v0/meta/bases/" + url.PathEscape(baseID) + "/tables"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to list Airtable tables", goerr.V("base_id", baseID))
	}
	if resp.Tables == nil {
		resp.Tables = []model.Table{}
	}
	return resp.Tables, nil
}

func (c *client) GetTable(ctx context.Context, baseID, tableID string) (*model.Table, error) {
	tables, err := c.ListTables(ctx, baseID)
	if err != nil {
		return nil, err
	}
	return model.FindTable(tables, tableID), nil
}

// defaultTables is created when a base is requested without tables
func defaultTables() []model.Table {
	return []model.Table{
		{
			Name:        "Table 1",
			Description: "Default table",
			Fields: []model.TableField{
				{Name: "Name", Type: types.AirtableSingleLineText},
			},
		},
	}
}

func (c *client) CreateBase(ctx context.Context, workspaceID, name string, tables []model.Table) (*interfaces.AirtableBase, error) {
	if len(tables) == 0 {
		tables = defaultTables()
	}

	req := struct {
		Name        string        `json:"name"`
		WorkspaceID string        `json:"workspaceId,omitempty"`
		Tables      []model.Table `json:"tables"`
	}{
		Name:        name,
		WorkspaceID: workspaceID,
		Tables:      tables,
	}

	var resp interfaces.AirtableBase
	if err := c.do(ctx, http.MethodPost, "/v0/meta/bases", req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to create Airtable base", goerr.V("name", name))
	}
	if resp.Name == "" {
		resp.Name = name
	}
	return &resp, nil
}

func (c *client) CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (string, error) {
	type record struct {
		ID     string         `json:"id,omitempty"`
		Fields map[string]any `json:"fields"`
	}
	req := struct {
		Records []record `json:"records"`
	}{
		Records: []record{{Fields: fields}},
	}

	var resp struct {
		Records []record `json:"records"`
	}
	path := "/v0/" + url.PathEscape(baseID) + "/" + url.PathEscape(tableID)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to create Airtable record",
			goerr.V("base_id", baseID), goerr.V("table_id", tableID))
	}

	if len(resp.Records) == 0 || resp.Records[0].ID == "" {
		return "", goerr.Wrap(ErrAPI, "Airtable created no record",
			goerr.V("base_id", baseID), goerr.V("table_id", tableID))
	}
	return resp.Records[0].ID, nil
}

func (c *client) RecordExists(ctx context.Context, baseID, tableID, recordID string) (bool, error) {
	path := "/v0/" + url.PathEscape(baseID) + "/" + url.PathEscape(tableID) + "/" + url.PathEscape(recordID)
	err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to get Airtable record",
		goerr.V("base_id", baseID), goerr.V("table_id", tableID), goerr.V("record_id", recordID))
}

const maxErrorBody = 4096

// do sends a JSON request and decodes a JSON answer into out when out is not
// nil
func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(ErrAPI, "failed to call Airtable API",
			goerr.V("method", method), goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	defer safe.DrainClose(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return goerr.Wrap(&APIError{Status: resp.StatusCode, Body: string(raw)}, "Airtable API returned error",
			goerr.V("method", method), goerr.V("path", path), goerr.V("status", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode Airtable response", goerr.V("path", path))
	}
	return nil
}
