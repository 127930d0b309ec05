package config

// NewRepositoryForTest creates a Repository config without parsing flags
func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{backend: backend, projectID: projectID, databaseID: databaseID}
}

// NewLoggerForTest creates a Logger config without parsing flags
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewAirtableForTest creates an Airtable config without parsing flags
func NewAirtableForTest(clientID, baseURL, apiURL string, noAuth bool, token string) *Airtable {
	return &Airtable{clientID: clientID, baseURL: baseURL, apiURL: apiURL, noAuth: noAuth, token: token}
}
