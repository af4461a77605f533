package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// ServerStream writes the messages of a server-streaming RPC as server-sent
// events. Each message is sent as a "data:" line holding its JSON form, a
// comment is written every keep-alive interval while the RPC is idle and a
// failed RPC ends the stream with a single "error" event.
type ServerStream[T any] struct {
	ctx     context.Context
	w       http.ResponseWriter
	flusher http.Flusher

	mu      sync.Mutex
	header  metadata.MD
	trailer metadata.MD
	started bool
	closed  bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

var _ grpc.ServerStreamingServer[struct{}] = (*ServerStream[struct{}])(nil)

// NewServerStream prepares w to carry an event stream. The response is
// only committed when the first event, header or keep-alive is written.
func NewServerStream[T any](ctx context.Context, w http.ResponseWriter, keepAlive time.Duration) (*ServerStream[T], error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, status.Error(codes.Internal, "streaming is not supported by the response writer")
	}

	s := &ServerStream[T]{
		ctx:     ctx,
		w:       w,
		flusher: flusher,
		header:  metadata.MD{},
		trailer: metadata.MD{},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if keepAlive > 0 {
		go s.keepAlive(keepAlive)
	} else {
		close(s.done)
	}

	return s, nil
}

func (s *ServerStream[T]) keepAlive(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.closed {
				s.startLocked()
				if _, err := io.WriteString(s.w, ": keep-alive\n\n"); err != nil {
					logger().WithError(err).Debug("could not write stream keep-alive")
				}
				s.flusher.Flush()
			}
			s.mu.Unlock()
		}
	}
}

func (s *ServerStream[T]) startLocked() {
	if s.started {
		return
	}

	h := s.w.Header()
	for k, values := range s.header {
		for _, v := range values {
			h.Add(k, v)
		}
	}

	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
	s.started = true
}

// Send writes m as a data event.
func (s *ServerStream[T]) Send(m *T) error {
	msg, ok := any(m).(proto.Message)
	if !ok {
		return status.Errorf(codes.Internal, "%T is not a protobuf message", m)
	}

	data, err := marshalOptions.Marshal(msg)
	if err != nil {
		return status.Errorf(codes.Internal, "could not encode event: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return status.Error(codes.Canceled, "stream closed")
	}
	if err := s.ctx.Err(); err != nil {
		return status.FromContextError(err).Err()
	}

	s.startLocked()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return status.Errorf(codes.Unavailable, "could not write event: %v", err)
	}
	s.flusher.Flush()

	return nil
}

// Finish stops the keep-alive and closes the stream. A non-nil err is sent
// as the final error event.
func (s *ServerStream[T]) Finish(err error) {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.startLocked()

	if err == nil {
		return
	}

	data, marshalErr := json.Marshal(NewErrorEnvelope(err))
	if marshalErr != nil {
		logger().WithError(marshalErr).Error("could not marshal stream error event")
		return
	}

	if _, writeErr := fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", data); writeErr != nil {
		logger().WithError(writeErr).Debug("could not write stream error event")
	}
	s.flusher.Flush()
}

// SetHeader merges md into the response headers. It fails once the
// stream has started.
func (s *ServerStream[T]) SetHeader(md metadata.MD) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return status.Error(codes.Internal, "headers already sent")
	}
	s.header = metadata.Join(s.header, md)

	return nil
}

// SendHeader merges md into the response headers and commits them.
func (s *ServerStream[T]) SendHeader(md metadata.MD) error {
	if err := s.SetHeader(md); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()

	return nil
}

// SetTrailer records trailer metadata. Event streams have no trailers so
// the values are kept for Trailer only.
func (s *ServerStream[T]) SetTrailer(md metadata.MD) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trailer = metadata.Join(s.trailer, md)
}

// Trailer returns the metadata recorded with SetTrailer.
func (s *ServerStream[T]) Trailer() metadata.MD {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trailer.Copy()
}

func (s *ServerStream[T]) Context() context.Context {
	return s.ctx
}

func (s *ServerStream[T]) SendMsg(m any) error {
	msg, ok := m.(*T)
	if !ok {
		return status.Errorf(codes.Internal, "unexpected message type %T", m)
	}

	return s.Send(msg)
}

// RecvMsg reports the end of the input: the request was already decoded
// from the HTTP request.
func (s *ServerStream[T]) RecvMsg(any) error {
	return io.EOF
}
