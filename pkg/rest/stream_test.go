package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type plainWriter struct {
	header http.Header
}

func (p *plainWriter) Header() http.Header         { return p.header }
func (p *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p *plainWriter) WriteHeader(int)             {}

func TestServerStreamEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewServerStream[wrapperspb.Int32Value](context.Background(), rec, 0)
	require.NoError(t, err)

	require.NoError(t, s.Send(wrapperspb.Int32(1)))
	require.NoError(t, s.Send(wrapperspb.Int32(2)))
	s.Finish(nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "data: 1\n\ndata: 2\n\n", rec.Body.String())

	err = s.Send(wrapperspb.Int32(3))
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestServerStreamErrorEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewServerStream[wrapperspb.StringValue](context.Background(), rec, 0)
	require.NoError(t, err)

	require.NoError(t, s.Send(wrapperspb.String("a")))
	s.Finish(status.Error(codes.NotFound, "gone"))
	s.Finish(status.Error(codes.Internal, "ignored"))

	expected := "data: \"a\"\n\n" +
		"event: error\n" +
		`data: {"error":{"code":404,"message":"gone","status":"NOT_FOUND"}}` + "\n\n"
	assert.Equal(t, expected, rec.Body.String())
}

func TestServerStreamErrorBeforeFirstEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewServerStream[wrapperspb.StringValue](context.Background(), rec, 0)
	require.NoError(t, err)

	s.Finish(status.Error(codes.PermissionDenied, "denied"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error\n")
	assert.Contains(t, rec.Body.String(), `"status":"PERMISSION_DENIED"`)
}

func TestServerStreamHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewServerStream[wrapperspb.StringValue](context.Background(), rec, 0)
	require.NoError(t, err)

	require.NoError(t, s.SetHeader(metadata.Pairs("x-request-id", "abc")))
	require.NoError(t, s.Send(wrapperspb.String("a")))
	assert.Error(t, s.SetHeader(metadata.Pairs("x-late", "1")))

	s.SetTrailer(metadata.Pairs("x-count", "1"))
	s.Finish(nil)

	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
	assert.Empty(t, rec.Header().Get("X-Late"))
	assert.Equal(t, []string{"1"}, s.Trailer().Get("x-count"))
}

func TestServerStreamKeepAlive(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewServerStream[wrapperspb.StringValue](context.Background(), rec, 5*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	s.Finish(nil)

	assert.Contains(t, rec.Body.String(), ": keep-alive\n\n")
}

func TestServerStreamCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	s, err := NewServerStream[wrapperspb.StringValue](ctx, rec, time.Second)
	require.NoError(t, err)

	cancel()
	err = s.Send(wrapperspb.String("a"))
	assert.Equal(t, codes.Canceled, status.Code(err))
	s.Finish(nil)
}

func TestServerStreamRequiresFlusher(t *testing.T) {
	_, err := NewServerStream[wrapperspb.StringValue](context.Background(), &plainWriter{header: http.Header{}}, 0)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestServerStreamRecvMsg(t *testing.T) {
	s, err := NewServerStream[wrapperspb.StringValue](context.Background(), httptest.NewRecorder(), 0)
	require.NoError(t, err)

	assert.Error(t, s.RecvMsg(nil))
	assert.Error(t, s.SendMsg("not a message"))
}
