package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorEnvelope is the JSON body of every error response and of the SSE
// error event.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed call.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// FieldError is returned when a path or query value cannot be converted
// into its request field.
type FieldError struct {
	Field    string
	Value    string
	Expected string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value '%s' for field '%s': expected %s", e.Value, e.Field, e.Expected)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// GRPCStatus lets status.FromError treat field errors as INVALID_ARGUMENT.
func (e *FieldError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// NewErrorEnvelope builds the envelope describing err.
func NewErrorEnvelope(err error) *ErrorEnvelope {
	st := toStatus(err)
	return &ErrorEnvelope{
		Error: ErrorBody{
			Code:    HTTPStatus(st.Code()),
			Message: st.Message(),
			Status:  CodeName(st.Code()),
		},
	}
}

func toStatus(err error) *status.Status {
	if st, ok := status.FromError(err); ok {
		return st
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return status.FromContextError(err)
	}

	return status.New(codes.Unknown, err.Error())
}

// WriteError writes err as a JSON error envelope with the HTTP status
// matching its gRPC code.
func WriteError(w http.ResponseWriter, err error) {
	envelope := NewErrorEnvelope(err)
	b, marshalErr := json.Marshal(envelope)
	if marshalErr != nil {
		logger().WithError(marshalErr).Error("could not marshal error envelope")
		http.Error(w, envelope.Error.Message, envelope.Error.Code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(envelope.Error.Code)
	if _, err := w.Write(b); err != nil {
		logger().WithError(err).Debug("could not write error response")
	}
}
