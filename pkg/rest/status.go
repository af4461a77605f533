package rest

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

type statusEntry struct {
	httpStatus int
	name       string
}

var statusTable = map[codes.Code]statusEntry{
	codes.OK:                 {http.StatusOK, "OK"},
	codes.Canceled:           {http.StatusRequestTimeout, "CANCELLED"},
	codes.Unknown:            {http.StatusInternalServerError, "UNKNOWN"},
	codes.InvalidArgument:    {http.StatusBadRequest, "INVALID_ARGUMENT"},
	codes.DeadlineExceeded:   {http.StatusGatewayTimeout, "DEADLINE_EXCEEDED"},
	codes.NotFound:           {http.StatusNotFound, "NOT_FOUND"},
	codes.AlreadyExists:      {http.StatusConflict, "ALREADY_EXISTS"},
	codes.PermissionDenied:   {http.StatusForbidden, "PERMISSION_DENIED"},
	codes.ResourceExhausted:  {http.StatusTooManyRequests, "RESOURCE_EXHAUSTED"},
	codes.FailedPrecondition: {http.StatusPreconditionFailed, "FAILED_PRECONDITION"},
	codes.Aborted:            {http.StatusConflict, "ABORTED"},
	codes.OutOfRange:         {http.StatusBadRequest, "OUT_OF_RANGE"},
	codes.Unimplemented:      {http.StatusNotImplemented, "UNIMPLEMENTED"},
	codes.Internal:           {http.StatusInternalServerError, "INTERNAL"},
	codes.Unavailable:        {http.StatusServiceUnavailable, "UNAVAILABLE"},
	codes.DataLoss:           {http.StatusInternalServerError, "DATA_LOSS"},
	codes.Unauthenticated:    {http.StatusUnauthorized, "UNAUTHENTICATED"},
}

// HTTPStatus maps a gRPC status code into an HTTP status. Codes outside the
// gRPC set map to 500.
func HTTPStatus(code codes.Code) int {
	if e, ok := statusTable[code]; ok {
		return e.httpStatus
	}

	return http.StatusInternalServerError
}

// CodeName returns the canonical upper snake case name of a gRPC status
// code, or UNKNOWN.
func CodeName(code codes.Code) string {
	if e, ok := statusTable[code]; ok {
		return e.name
	}

	return "UNKNOWN"
}
