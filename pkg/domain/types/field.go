package types

// QuestionType is the internal type of a form question, derived from the
// Airtable field it is bound to
type QuestionType string

const (
	QuestionTypeShortText    QuestionType = "shortText"
	QuestionTypeLongText     QuestionType = "longText"
	QuestionTypeSingleSelect QuestionType = "singleSelect"
	QuestionTypeMultiSelect  QuestionType = "multiSelect"
	QuestionTypeAttachment   QuestionType = "attachment"
)

// AllQuestionTypes returns all valid question types
func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionTypeShortText,
		QuestionTypeLongText,
		QuestionTypeSingleSelect,
		QuestionTypeMultiSelect,
		QuestionTypeAttachment,
	}
}

// IsValid checks if the question type is valid
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeShortText,
		QuestionTypeLongText,
		QuestionTypeSingleSelect,
		QuestionTypeMultiSelect,
		QuestionTypeAttachment:
		return true
	default:
		return false
	}
}

// IsSelect reports whether the question carries a list of options
func (t QuestionType) IsSelect() bool {
	return t == QuestionTypeSingleSelect || t == QuestionTypeMultiSelect
}

// String returns the string representation of the question type
func (t QuestionType) String() string {
	return string(t)
}

// AirtableFieldType is the type name Airtable reports for a table field
type AirtableFieldType string

const (
	AirtableSingleLineText      AirtableFieldType = "singleLineText"
	AirtableMultilineText       AirtableFieldType = "multilineText"
	AirtableSingleSelect        AirtableFieldType = "singleSelect"
	AirtableMultipleSelects     AirtableFieldType = "multipleSelects"
	AirtableMultipleAttachments AirtableFieldType = "multipleAttachments"
)

var supportedAirtableTypes = map[AirtableFieldType]QuestionType{
	AirtableSingleLineText:      QuestionTypeShortText,
	AirtableMultilineText:       QuestionTypeLongText,
	AirtableSingleSelect:        QuestionTypeSingleSelect,
	AirtableMultipleSelects:     QuestionTypeMultiSelect,
	AirtableMultipleAttachments: QuestionTypeAttachment,
}

// QuestionType returns the internal question type for an Airtable field type.
// ok is false when the field type is not supported.
func (t AirtableFieldType) QuestionType() (QuestionType, bool) {
	qt, ok := supportedAirtableTypes[t]
	return qt, ok
}

// HasChoices reports whether Airtable stores select choices for the field type
func (t AirtableFieldType) HasChoices() bool {
	return t == AirtableSingleSelect || t == AirtableMultipleSelects
}

// String returns the string representation of the Airtable field type
func (t AirtableFieldType) String() string {
	return string(t)
}
