package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMethodNotFound is returned when a configured method name matches no
// bound method.
var ErrMethodNotFound = errors.New("method not found")

// AmbiguousMethodError is returned when a bare method name matches methods
// of more than one service.
type AmbiguousMethodError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousMethodError) Error() string {
	return fmt.Sprintf("method name '%s' is ambiguous, use one of: %s", e.Name, strings.Join(e.Candidates, ", "))
}

// ResolveOperationIDs maps method names into operationIds. A name is either
// "Service.Method" or a bare "Method" that must be unique across services.
func (md *Metadata) ResolveOperationIDs(names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := md.resolveOperationID(name)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (md *Metadata) resolveOperationID(name string) (string, error) {
	if service, method, ok := strings.Cut(name, "."); ok {
		for _, op := range md.OperationIDs {
			if op.Service == service && op.Method == method {
				return op.OperationID, nil
			}
		}

		return "", fmt.Errorf("%w: %s", ErrMethodNotFound, name)
	}

	var matches []OperationID
	for _, op := range md.OperationIDs {
		if op.Method == name {
			matches = append(matches, op)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrMethodNotFound, name)
	case 1:
		return matches[0].OperationID, nil
	}

	candidates := make([]string, len(matches))
	for i, m := range matches {
		candidates[i] = m.Service + "." + m.Method
	}

	return "", &AmbiguousMethodError{Name: name, Candidates: candidates}
}

// IsPublic tells if a method is listed in names, either bare or qualified
// with its service.
func IsPublic(m *Method, names []string) bool {
	for _, n := range names {
		if n == m.Name || n == m.Service.Name+"."+m.Name {
			return true
		}
	}

	return false
}
