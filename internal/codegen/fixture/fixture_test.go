package fixture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
)

type server struct {
	got     proto.Message
	md      metadata.MD
	err     error
	updates []grpc_health_v1.HealthCheckResponse_ServingStatus
}

func (s *server) GetReference(ctx context.Context, req *annotations.ResourceReference) (*annotations.ResourceReference, error) {
	s.got = req
	s.md, _ = metadata.FromIncomingContext(ctx)
	if s.err != nil {
		return nil, s.err
	}

	return req, nil
}

func (s *server) CheckStatus(_ context.Context, req *grpc_health_v1.HealthCheckResponse) (*grpc_health_v1.HealthCheckResponse, error) {
	s.got = req
	return req, s.err
}

func (s *server) CreateReference(_ context.Context, req *annotations.ResourceReference) (*annotations.ResourceReference, error) {
	s.got = req
	return req, s.err
}

func (s *server) DeleteReference(_ context.Context, req *annotations.ResourceReference) (*emptypb.Empty, error) {
	s.got = req
	return &emptypb.Empty{}, s.err
}

func (s *server) WatchHealth(req *grpc_health_v1.HealthCheckRequest, stream grpc.ServerStreamingServer[grpc_health_v1.HealthCheckResponse]) error {
	s.got = req
	for _, st := range s.updates {
		if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: st}); err != nil {
			return err
		}
	}

	return s.err
}

func serve(t *testing.T, srv *server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	NewFixtureServiceRouter(srv).ServeHTTP(rec, req)
	return rec
}

func TestPathAndQueryBinding(t *testing.T) {
	srv := &server{}
	req := httptest.NewRequest(http.MethodGet, "/v1/references/library.Book?childType=library.Page", nil)
	req.Header.Set("Authorization", "Bearer token")

	rec := serve(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got, ok := srv.got.(*annotations.ResourceReference)
	require.True(t, ok)
	assert.Equal(t, "library.Book", got.GetType())
	assert.Equal(t, "library.Page", got.GetChildType())
	assert.Equal(t, []string{"Bearer token"}, srv.md.Get("authorization"))

	resp := &annotations.ResourceReference{}
	require.NoError(t, protojson.Unmarshal(rec.Body.Bytes(), resp))
	assert.True(t, proto.Equal(got, resp))

	t.Run("proto field name in the query", func(t *testing.T) {
		srv := &server{}
		rec := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/references/a?child_type=b", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "b", srv.got.(*annotations.ResourceReference).GetChildType())
	})
}

func TestQueryParseError(t *testing.T) {
	srv := &server{}
	rec := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/health/status?status=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":400,"message":"invalid value 'bogus' for field 'status': expected enum value","status":"INVALID_ARGUMENT"}}`,
		rec.Body.String())
	assert.Nil(t, srv.got)

	rec = serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/health/status?status=serving", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, srv.got.(*grpc_health_v1.HealthCheckResponse).GetStatus())
}

func TestCreateFromBody(t *testing.T) {
	srv := &server{}
	rec := serve(t, srv, httptest.NewRequest(http.MethodPost, "/v1/references",
		strings.NewReader(`{"type":"library.Book","childType":"library.Page","unknown":1}`)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := srv.got.(*annotations.ResourceReference)
	assert.Equal(t, "library.Book", got.GetType())
	assert.Equal(t, "library.Page", got.GetChildType())

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(t, &server{}, httptest.NewRequest(http.MethodPost, "/v1/references", strings.NewReader(`{"type":`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"INVALID_ARGUMENT"`)
	})
}

func TestDeleteAnswersNoContent(t *testing.T) {
	srv := &server{}
	rec := serve(t, srv, httptest.NewRequest(http.MethodDelete, "/v1/references/library.Book", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "library.Book", srv.got.(*annotations.ResourceReference).GetType())
}

func TestRPCErrorEnvelope(t *testing.T) {
	srv := &server{err: status.Error(codes.NotFound, "reference not found")}
	rec := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/references/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":404,"message":"reference not found","status":"NOT_FOUND"}}`, rec.Body.String())
}

func TestEventStream(t *testing.T) {
	srv := &server{
		updates: []grpc_health_v1.HealthCheckResponse_ServingStatus{grpc_health_v1.HealthCheckResponse_SERVING},
		err:     status.Error(codes.Unavailable, "backend down"),
	}
	rec := serve(t, srv, httptest.NewRequest(http.MethodGet, "/v1/health:watch?service=library", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "library", srv.got.(*grpc_health_v1.HealthCheckRequest).GetService())

	events := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, events, 2, rec.Body.String())

	data, ok := strings.CutPrefix(events[0], "data: ")
	require.True(t, ok, events[0])
	update := &grpc_health_v1.HealthCheckResponse{}
	require.NoError(t, protojson.Unmarshal([]byte(data), update))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, update.GetStatus())

	assert.Equal(t,
		"event: error\n"+`data: {"error":{"code":503,"message":"backend down","status":"UNAVAILABLE"}}`,
		events[1])
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "event: error"))
}

func TestUnboundRoutes(t *testing.T) {
	rec := serve(t, &server{}, httptest.NewRequest(http.MethodPut, "/v1/references", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"UNIMPLEMENTED"`)

	rec = serve(t, &server{}, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	assert.Equal(t, []string{"/v1/references/{type}"}, FixtureServicePublicRoutes())
}
