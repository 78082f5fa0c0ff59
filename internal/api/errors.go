package api

import (
	"encoding/json"
	"fmt"
)

// Error is a Pine AI service error. Code is the service-supplied error
// code and may be empty; Status is the HTTP status that carried it.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// errorBody matches both {"error": {"code", "message"}} and flat
// {"code", "message"} payloads; the service has used both shapes.
type errorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeError(status int, data []byte) *Error {
	apiErr := &Error{Status: status}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != nil {
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
		} else {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return apiErr
}
