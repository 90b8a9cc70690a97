package ltiaas

import (
	"fmt"
	"strings"
)

// RequestMethod is the closed set of verbs accepted by MakeRequest.
type RequestMethod int

const (
	MethodGet RequestMethod = iota + 1
	MethodPost
	MethodPut
	MethodDelete
)

var methodVerbs = map[RequestMethod]string{
	MethodGet:    "GET",
	MethodPost:   "POST",
	MethodPut:    "PUT",
	MethodDelete: "DELETE",
}

// String returns the wire verb, or a diagnostic form for values outside the set.
func (m RequestMethod) String() string {
	if verb, ok := methodVerbs[m]; ok {
		return verb
	}
	return fmt.Sprintf("RequestMethod(%d)", int(m))
}

// verb converts the method to its wire form at the HTTP boundary.
func (m RequestMethod) verb() (string, error) {
	verb, ok := methodVerbs[m]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return verb, nil
}

// ParseRequestMethod maps a case-insensitive verb to its RequestMethod.
func ParseRequestMethod(s string) (RequestMethod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for m, verb := range methodVerbs {
		if verb == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}
