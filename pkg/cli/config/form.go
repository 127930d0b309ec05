package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

// FormFile is a form definition kept in a TOML file, checked offline by the
// validate command
type FormFile struct {
	Title     string              `toml:"title"`
	BaseID    string              `toml:"airtable_base_id"`
	TableID   string              `toml:"airtable_table_id"`
	Questions []model.RawQuestion `toml:"question"`
}

// Validate checks the fields BuildForm does not look at
func (f *FormFile) Validate() error {
	if f.Title == "" {
		return goerr.Wrap(ErrInvalidConfig, "title is required")
	}
	if f.TableID == "" {
		return goerr.Wrap(ErrInvalidConfig, "airtable_table_id is required")
	}
	if len(f.Questions) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "at least one [[question]] is required")
	}

	seen := make(map[string]struct{}, len(f.Questions))
	for _, q := range f.Questions {
		if _, ok := seen[q.QuestionKey]; ok && q.QuestionKey != "" {
			return goerr.Wrap(ErrInvalidConfig, "duplicate question_key", goerr.V(QuestionKey, q.QuestionKey))
		}
		seen[q.QuestionKey] = struct{}{}
	}
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read file", goerr.V(ConfigPathKey, path))
	}
	return data, nil
}

// LoadFormFile reads and validates a TOML form definition
func LoadFormFile(path string) (*FormFile, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var form FormFile
	if err := toml.Unmarshal(data, &form); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML form file",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := form.Validate(); err != nil {
		return nil, goerr.Wrap(err, "form file validation failed", goerr.V(ConfigPathKey, path))
	}

	return &form, nil
}

// LoadTableSchema reads a saved Airtable base schema. Both the API response
// shape {"tables": [...]} and a bare array of tables are accepted.
func LoadTableSchema(path string) ([]model.Table, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Tables []model.Table `json:"tables"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tables != nil {
		return wrapped.Tables, nil
	}

	var tables []model.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse schema JSON",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}
	return tables, nil
}
