package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/cardfolio/clubhouse/internal/app/system/authn"
	"github.com/google/uuid"
)

// TestIdentity represents a caller identity for testing HTTP handlers.
type TestIdentity struct {
	UID  string
	Name string
}

// NewIdentity returns a TestIdentity with a fresh unique uid.
func NewIdentity(name string) TestIdentity {
	return TestIdentity{
		UID:  "uid-" + uuid.NewString(),
		Name: name,
	}
}

// WithIdentity adds a caller identity to the request context for testing
// authenticated handlers. This bypasses bearer-token verification and
// injects the identity directly.
func WithIdentity(r *http.Request, id TestIdentity) *http.Request {
	return authn.WithTestIdentity(r, &authn.Identity{
		UID:  id.UID,
		Name: id.Name,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with an identity in context.
func NewAuthenticatedRequest(method, target string, id TestIdentity) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithIdentity(req, id)
}

// NewJSONRequest creates an HTTP request carrying a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q (body: %s)", expected, r.Body.String())
	}
}
