package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewRouter returns the router used by generated code. Unknown routes are
// answered with a NOT_FOUND error envelope and known paths requested with
// an unbound verb with an UNIMPLEMENTED one.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, status.Errorf(codes.NotFound, "no route for %s %s", req.Method, req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, status.Errorf(codes.Unimplemented, "method %s is not bound for %s", req.Method, req.URL.Path))
	})

	return r
}

// PathVars returns the path variables matched for r.
func PathVars(r *http.Request) map[string]string {
	return mux.Vars(r)
}
