package types

// ChatRequest is decoded leniently: Message stays nil when the field is absent.
type ChatRequest struct {
	Message *string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Type     string `json:"type"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status       string         `json:"status"`
	Strategy     string         `json:"strategy"`
	Database     string         `json:"database,omitempty"`
	Interactions int            `json:"interactions"`
	Categories   map[string]int `json:"categories,omitempty"`
}
