package chi

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in gateway error responses.
const (
	codeBadRequest         = "bad_request"
	codeInvalidQuery       = "invalid_query"
	codeEmptyField         = "empty_field"
	codeFieldNotAllowed    = "field_not_allowed"
	codeCollectionNotFound = "collection_not_found"
	codeUpstreamError      = "upstream_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeFieldError(w http.ResponseWriter, code, message, field string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: code, Message: message, Field: field})
}
