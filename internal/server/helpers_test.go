package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestEnv builds a server on in-memory stores.
func newTestEnv(t *testing.T) (*Server, *MemoryUserStore, *MemoryFileStore, *MemoryBlobStore) {
	t.Helper()

	users := NewMemoryUserStore()
	files := NewMemoryFileStore()
	blob := NewMemoryBlobStore()

	s := New(Config{
		Addr:    ":0",
		BaseURL: "http://localhost:8080",
		Build:   BuildInfo{Version: "test"},
		Users:   users,
		Files:   files,
		Blob:    blob,
	})
	return s, users, files, blob
}

// seedOperator creates a verified operator account directly in the store.
func seedOperator(t *testing.T, users UserStore, email, password string) *User {
	t.Helper()

	u, err := SeedOperator(context.Background(), users, email, password)
	if err != nil {
		t.Fatalf("seed operator: %v", err)
	}
	return u
}

// doJSON performs a JSON request against the server handler and decodes
// the response body into out (when out is non-nil and the body is JSON).
func doJSON(t *testing.T, s *Server, method, path string, payload any, token string) (int, map[string]any) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(rec.Body).Decode(&out)
	}
	return rec.Code, out
}

// login returns the session token for the given credentials, failing the
// test on a non-200 response.
func login(t *testing.T, s *Server, path, email, password string) string {
	t.Helper()

	status, body := doJSON(t, s, http.MethodPost, path,
		map[string]string{"email": email, "password": password}, "")
	if status != http.StatusOK {
		t.Fatalf("login %s as %s: status %d", path, email, status)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatalf("login %s as %s: no token in response", path, email)
	}
	return tok
}

// newAuthedRequest builds a GET /client/files request carrying the token.
func newAuthedRequest(t *testing.T, token string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/client/files", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// doRequest runs a request through the full middleware chain.
func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// signupVerifyLogin walks a client account through signup and email
// verification so it is ready to log in.
func signupVerifyLogin(t *testing.T, s *Server, email, password string) {
	t.Helper()

	status, body := doJSON(t, s, http.MethodPost, "/client/signup",
		map[string]string{"email": email, "password": password}, "")
	if status != http.StatusCreated {
		t.Fatalf("signup %s: status %d", email, status)
	}
	verifyURL, _ := body["verify_url"].(string)
	if verifyURL == "" {
		t.Fatalf("signup %s: no verify_url in response", email)
	}

	idx := strings.Index(verifyURL, "/client/verify-email/")
	if idx < 0 {
		t.Fatalf("unexpected verify_url: %s", verifyURL)
	}
	status, _ = doJSON(t, s, http.MethodGet, verifyURL[idx:], nil, "")
	if status != http.StatusOK {
		t.Fatalf("verify %s: status %d", email, status)
	}
}

// uploadFile posts a multipart upload with the given filename and content.
func uploadFile(t *testing.T, s *Server, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fmt.Fprint(fw, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ops/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
