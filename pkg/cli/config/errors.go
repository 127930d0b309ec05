package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for form definition and schema files
var (
	ErrConfigNotFound = goerr.New("configuration file not found")
	ErrInvalidConfig  = goerr.New("invalid configuration")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	QuestionKey   = "question_key"
)
