package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
)

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d (body %s)", status, rr.Code, rr.Body.String())
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected content type application/json, got %q", ct)
	}

	var response ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Error != message {
		t.Fatalf("expected error %q, got %q", message, response.Error)
	}
}

// newAuthedRequest builds a request carrying user in its context, with the
// {id} path value set when id is non-empty.
func newAuthedRequest(method, target string, body io.Reader, user *models.Profile, id string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if user != nil {
		req = req.WithContext(SetUserInContext(req.Context(), user))
	}
	if id != "" {
		req.SetPathValue("id", id)
	}
	return req
}

func testProfile() *models.Profile {
	return &models.Profile{ID: uuid.New(), FID: 42, Username: "alice"}
}
