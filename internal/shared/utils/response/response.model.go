package response

// StandardApiResponse is the envelope every handler returns. Data carries the
// payload on success, Errors the details on failure; both drop out of the
// JSON when empty.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
