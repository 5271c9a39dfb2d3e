package core

import (
	"encoding/json"
	"net/http"
)

// MimeTypeJSON is the only request content type the API accepts.
const MimeTypeJSON = "application/json"

type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic contains the basic response fields. All responses must have them
type JsonBasic struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JsonWithData is used for structured JSON responses with data
type JsonWithData struct {
	JsonBasic
	Data interface{} `json:"data,omitempty"`
}

var headersJson = map[string]string{
	"Content-Type": "application/json; charset=utf-8",

	// mitigate MIME-type sniffing attacks
	"X-Content-Type-Options": "nosniff",

	// auth responses carry tokens; nothing here may be cached
	"Cache-Control": "no-store, no-cache, must-revalidate",

	"X-Frame-Options": "DENY",

	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

func setHeaders(w http.ResponseWriter, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

// JsonFieldBasic is JsonBasic plus the name of the offending request field.
type JsonFieldBasic struct {
	JsonBasic
	Field string `json:"field"`
}

// writeJsonWithData writes a structured JSON response with the provided data
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, headersJson)
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// writeJsonFieldError writes a validation failure naming the failing field.
func writeJsonFieldError(w http.ResponseWriter, fe FieldError) {
	setHeaders(w, headersJson)
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(JsonFieldBasic{
		JsonBasic: JsonBasic{
			Status:  http.StatusBadRequest,
			Code:    CodeErrorInvalidRequest,
			Message: fe.Message,
		},
		Field: fe.Field,
	})
}
