package types

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type RateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int64  `json:"retry_after"`
}

type IngestResponse struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}
