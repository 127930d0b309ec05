package model

import "github.com/m-mizutani/goerr/v2"

// Form definition errors. BuildForm stops at the first one.
var (
	ErrMissingRequiredField   = goerr.New("missing required field")
	ErrUnknownField           = goerr.New("unknown Airtable field")
	ErrUnsupportedType        = goerr.New("unsupported Airtable field type")
	ErrInvalidConditionalRule = goerr.New("invalid conditional rule")
)

// Submission errors. ValidateAnswers collects all of them.
var (
	ErrRequiredAnswerMissing  = goerr.New("required answer is missing")
	ErrInvalidOptionValue     = goerr.New("invalid option value")
	ErrInvalidAttachmentShape = goerr.New("invalid attachment shape")
)

// Context keys for error values
const (
	QuestionKeyKey = "question_key"
	FieldIDKey     = "field_id"
	FieldTypeKey   = "field_type"
	OperatorKey    = "operator"
	LogicKey       = "logic"

	// ReferencedKeyKey is the question a conditional rule points at
	ReferencedKeyKey = "referenced_question_key"
)
