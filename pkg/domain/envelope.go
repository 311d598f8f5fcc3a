package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// Payload holds tool-specific result fields. They are merged into the top level
// of the success envelope.
type Payload map[string]any

// ErrorKind classifies a failed call so transports can pick a status code.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindBadRequest       ErrorKind = "bad_request"
	KindUnknownTool      ErrorKind = "unknown_tool"
	KindInvalidArguments ErrorKind = "invalid_arguments"
	KindHandlerFailure   ErrorKind = "handler_failure"
)

// Response is the uniform result of every call.
//
// On success it serializes as {"success":true, <payload fields>..., "message":...};
// on failure as {"success":false, "message":...}. A failed response never carries payload.
type Response struct {
	Success bool
	Message string
	Payload Payload
	// Kind is the failure class. It is not serialized.
	Kind ErrorKind
}

// Succeed builds a success envelope.
func Succeed(payload Payload, message string) Response {
	return Response{Success: true, Message: message, Payload: payload}
}

// Fail builds a failure envelope.
func Fail(kind ErrorKind, format string, args ...any) Response {
	return Response{Success: false, Message: fmt.Sprintf(format, args...), Kind: kind}
}

// StatusCode maps the response to an HTTP status.
func (r Response) StatusCode() int {
	if r.Success {
		return http.StatusOK
	}
	if r.Kind == KindHandlerFailure {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// Get returns a payload field.
func (r Response) Get(key string) (any, bool) {
	v, ok := r.Payload[key]
	return v, ok
}

// MarshalJSON flattens the payload into the envelope.
// The reserved keys "success" and "message" always come from the envelope itself.
func (r Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Payload)+2)
	if r.Success {
		maps.Copy(out, r.Payload)
	}
	out["success"] = r.Success
	out["message"] = r.Message
	return json.Marshal(out)
}

// UnmarshalJSON splits an envelope document back into flag, message and payload.
// Failure documents may use "error" instead of "message".
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	success, ok := raw["success"].(bool)
	if !ok {
		return fmt.Errorf("envelope: missing boolean \"success\"")
	}
	*r = Response{Success: success}

	if msg, ok := raw["message"].(string); ok {
		r.Message = msg
	} else if msg, ok := raw["error"].(string); ok && !success {
		r.Message = msg
	}

	delete(raw, "success")
	delete(raw, "message")
	if success {
		r.Payload = raw
	}
	return nil
}
