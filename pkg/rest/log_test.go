package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestSetLogger(t *testing.T) {
	previous := logger()
	t.Cleanup(func() { SetLogger(previous) })

	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(l)
			_ = logger()
		}()
	}
	wg.Wait()

	SetLogger(nil)
	assert.Equal(t, l, logger())

	WriteJSON(failingWriter{httptest.NewRecorder()}, http.StatusOK, wrapperspb.String("a"))
	assert.NotEmpty(t, hook.AllEntries())
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}
