package rest

import (
	"bytes"
	"io"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// MaxBodyBytes limits the size of decoded request bodies.
var MaxBodyBytes int64 = 4 << 20

var (
	unmarshalOptions = protojson.UnmarshalOptions{DiscardUnknown: true}
	marshalOptions   = protojson.MarshalOptions{}
)

// DecodeBody decodes the JSON request body into msg. An empty body leaves
// msg untouched.
func DecodeBody(r *http.Request, msg proto.Message) error {
	if r.Body == nil {
		return nil
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "could not read request body: %v", err)
	}
	if int64(len(b)) > MaxBodyBytes {
		return status.Errorf(codes.InvalidArgument, "request body exceeds %d bytes", MaxBodyBytes)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	if err := unmarshalOptions.Unmarshal(b, msg); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}

	return nil
}

// WriteJSON writes msg as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, code int, msg proto.Message) {
	b, err := marshalOptions.Marshal(msg)
	if err != nil {
		WriteError(w, status.Errorf(codes.Internal, "could not encode response: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(b); err != nil {
		logger().WithError(err).Debug("could not write response")
	}
}

// WriteNoContent answers 204 without a body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
