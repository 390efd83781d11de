package handler

// ErrorBody is the JSON envelope for every API error.
type ErrorBody struct {
	Error string `json:"error" example:"invalid login code"`
	Code  string `json:"code,omitempty" example:"CodeMismatch"`
}
