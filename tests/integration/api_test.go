//go:build integration
// +build integration

package integration

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
	"time"

	"docdrop/internal/server"
)

// setupTestServer builds the full handler chain on in-memory stores.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := server.NewMemoryUserStore()
	files := server.NewMemoryFileStore()
	blob := server.NewMemoryBlobStore()

	if _, err := server.SeedOperator(context.Background(), users, "ops@example.com", "OpsPass123"); err != nil {
		t.Fatalf("seed operator: %v", err)
	}

	srv := server.New(server.Config{
		Addr:    ":0",
		BaseURL: "http://localhost",
		Build:   server.BuildInfo{Version: "test"},
		Users:   users,
		Files:   files,
		Blob:    blob,
	})
	return httptest.NewServer(srv.Handler())
}

// TestAPIWorkflow tests the complete signup, verification, upload, and
// listing workflow over HTTP.
func TestAPIWorkflow(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()

	client := &http.Client{Timeout: 30 * time.Second}

	t.Run("Health Check", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/ready")
		if err != nil {
			t.Fatalf("Health check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	var opsToken string
	t.Run("Operator Login", func(t *testing.T) {
		opsToken = postLogin(t, client, srv.URL+"/ops/login", "ops@example.com", "OpsPass123", http.StatusOK)
		if opsToken == "" {
			t.Fatal("expected operator token")
		}
	})

	var fileID string
	t.Run("Operator Upload", func(t *testing.T) {
		resp := postUpload(t, client, srv.URL, opsToken, "q3-review.pptx", "deck bytes")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var body struct {
			FileID string `json:"file_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode upload response: %v", err)
		}
		fileID = body.FileID
		if fileID == "" {
			t.Fatal("expected file_id")
		}
	})

	t.Run("Upload Rejects Text File", func(t *testing.T) {
		resp := postUpload(t, client, srv.URL, opsToken, "notes.txt", "text")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", resp.StatusCode)
		}
	})

	var verifyPath string
	t.Run("Client Signup", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]string{
			"email":    "c1@x.com",
			"password": "ClientPass123",
		})
		resp, err := client.Post(srv.URL+"/client/signup", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}

		var body struct {
			VerifyURL string `json:"verify_url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode signup response: %v", err)
		}
		idx := strings.Index(body.VerifyURL, "/client/verify-email/")
		if idx < 0 {
			t.Fatalf("unexpected verify_url: %s", body.VerifyURL)
		}
		verifyPath = body.VerifyURL[idx:]
	})

	t.Run("Login Before Verification Fails", func(t *testing.T) {
		postLogin(t, client, srv.URL+"/client/login", "c1@x.com", "ClientPass123", http.StatusForbidden)
	})

	t.Run("Verify Email", func(t *testing.T) {
		resp, err := client.Get(srv.URL + verifyPath)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		// Re-verifying is a no-op, not an error.
		again, err := client.Get(srv.URL + verifyPath)
		if err != nil {
			t.Fatalf("re-verify failed: %v", err)
		}
		defer again.Body.Close()
		if again.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 on re-verify, got %d", again.StatusCode)
		}
	})

	var clientToken string
	t.Run("Client Login After Verification", func(t *testing.T) {
		clientToken = postLogin(t, client, srv.URL+"/client/login", "c1@x.com", "ClientPass123", http.StatusOK)
		if clientToken == "" {
			t.Fatal("expected client token")
		}
		if strings.Contains(verifyPath, clientToken) {
			t.Fatal("session token must differ from the verification token")
		}
	})

	t.Run("Client Lists Files", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/client/files", nil)
		req.Header.Set("Authorization", "Bearer "+clientToken)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		var records []struct {
			ID       string `json:"id"`
			Filename string `json:"filename"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].ID != fileID || records[0].Filename != "q3-review.pptx" {
			t.Fatalf("unexpected record: %+v", records[0])
		}
	})

	t.Run("Role Gate Blocks Crossed Tokens", func(t *testing.T) {
		// Client token cannot upload.
		resp := postUpload(t, client, srv.URL, clientToken, "x.docx", "x")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("Expected 403 for client upload, got %d", resp.StatusCode)
		}

		// Operator token cannot list.
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/client/files", nil)
		req.Header.Set("Authorization", "Bearer "+opsToken)
		listResp, err := client.Do(req)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		defer listResp.Body.Close()
		if listResp.StatusCode != http.StatusForbidden {
			t.Fatalf("Expected 403 for operator list, got %d", listResp.StatusCode)
		}
	})

	t.Run("Metrics Exposed", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatalf("metrics failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			t.Fatalf("read metrics: %v", err)
		}
		if !strings.Contains(buf.String(), "dd_uploads_total") {
			t.Error("expected dd_uploads_total in metrics output")
		}
	})
}

func postLogin(t *testing.T, client *http.Client, url, email, password string, wantStatus int) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("login %s: expected %d, got %d", url, wantStatus, resp.StatusCode)
	}
	if wantStatus != http.StatusOK {
		return ""
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.Token
}

func postUpload(t *testing.T, client *http.Client, baseURL, token, filename, content string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(fw, content)
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/ops/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	return resp
}
