package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/cli"
	"github.com/secmon-lab/airform/pkg/cli/config"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

const schemaJSON = `{"tables":[{"id":"tbl1","name":"Applicants","fields":[
	{"id":"fldName","name":"Name","type":"singleLineText"},
	{"id":"fldRole","name":"Role","type":"singleSelect","options":{"choices":[{"name":"Engineer"},{"name":"Designer"}]}},
	{"id":"fldAge","name":"Age","type":"number"}]}]}`

func writeFiles(t *testing.T, form string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	formPath := filepath.Join(dir, "form.toml")
	schemaPath := filepath.Join(dir, "schema.json")
	gt.NoError(t, os.WriteFile(formPath, []byte(form), 0o600)).Required()
	gt.NoError(t, os.WriteFile(schemaPath, []byte(schemaJSON), 0o600)).Required()
	return formPath, schemaPath
}

func runValidate(formPath, schemaPath string) error {
	return cli.Run(context.Background(), []string{
		"airform", "--log-output", "stderr", "validate", "--form", formPath, "--schema", schemaPath,
	}, "test")
}

func TestRun_ValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		form    string
		wantErr error
	}{
		{
			name: "valid form",
			form: `
title = "Application"
airtable_table_id = "tbl1"

[[question]]
question_key = "name"
airtable_field_id = "fldName"
label = "Name"
required = true

[[question]]
question_key = "role"
airtable_field_id = "fldRole"
label = "Role"
conditional_rules = { conditions = [ { questionKey = "name", operator = "notEquals", value = "" } ] }
`,
		},
		{
			name: "question without label",
			form: `
title = "Application"
airtable_table_id = "tbl1"

[[question]]
question_key = "name"
airtable_field_id = "fldName"
`,
			wantErr: model.ErrMissingRequiredField,
		},
		{
			name: "unsupported field type",
			form: `
title = "Application"
airtable_table_id = "tbl1"

[[question]]
question_key = "age"
airtable_field_id = "fldAge"
label = "Age"
`,
			wantErr: model.ErrUnsupportedType,
		},
		{
			name: "unknown field",
			form: `
title = "Application"
airtable_table_id = "tbl1"

[[question]]
question_key = "email"
airtable_field_id = "fldEmail"
label = "Email"
`,
			wantErr: model.ErrUnknownField,
		},
		{
			name: "unknown table",
			form: `
title = "Application"
airtable_table_id = "tblOther"

[[question]]
question_key = "name"
airtable_field_id = "fldName"
label = "Name"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "rule on an unknown question",
			form: `
title = "Application"
airtable_table_id = "tbl1"

[[question]]
question_key = "role"
airtable_field_id = "fldRole"
label = "Role"
conditional_rules = { conditions = [ { questionKey = "ghost", operator = "equals", value = "x" } ] }
`,
			wantErr: model.ErrInvalidConditionalRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formPath, schemaPath := writeFiles(t, tt.form)
			err := runValidate(formPath, schemaPath)
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestRun_ValidateCommand_Arguments(t *testing.T) {
	t.Run("nothing to validate", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"airform", "--log-output", "stderr", "validate"}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("form without schema", func(t *testing.T) {
		formPath, _ := writeFiles(t, "title = \"x\"\n")
		err := cli.Run(context.Background(), []string{"airform", "--log-output", "stderr", "validate", "--form", formPath}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("staging")
	gt.Array(t, cfg.Collections).Length(2).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("staging_forms")
	gt.Value(t, cfg.Collections[1].Name).Equal("staging_responses")

	idx := cfg.Collections[1].Indexes
	gt.Array(t, idx).Length(1).Required()
	gt.Value(t, idx[0].Fields).Equal([]fireconf.IndexField{
		{Path: "form_id", Order: fireconf.OrderAscending},
		{Path: "created_at", Order: fireconf.OrderDescending},
	})

	gt.Value(t, cli.GetIndexConfig("").Collections[0].Name).Equal("forms")
}
