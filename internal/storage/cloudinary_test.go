package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient("democloud", "key123", "secret456")
	c.baseURL = baseURL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestSignSortsParams(t *testing.T) {
	c := NewClient("democloud", "key123", "secret456")
	got := c.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "citilyst/reports",
	})
	sum := sha1.Sum([]byte("folder=citilyst/reports&timestamp=1700000000" + "secret456"))
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("signature mismatch: got %s want %s", got, want)
	}
}

func TestUploadImage(t *testing.T) {
	var gotPath string
	var gotAPIKey, gotSignature, gotFolder string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotAPIKey = r.FormValue("api_key")
		gotSignature = r.FormValue("signature")
		gotFolder = r.FormValue("folder")
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			content, _ := io.ReadAll(file)
			if string(content) != "image-bytes" {
				t.Errorf("unexpected file content %q", content)
			}
		}
		_ = json.NewEncoder(w).Encode(UploadResult{
			PublicID:  "citilyst/reports/abc",
			SecureURL: "https://res.cloudinary.com/democloud/image/upload/abc.jpg",
			Format:    "jpg",
		})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	result, err := c.UploadImage(context.Background(), "foto.jpg", strings.NewReader("image-bytes"), "citilyst/reports")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotPath != "/democloud/image/upload" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAPIKey != "key123" {
		t.Fatalf("unexpected api key %q", gotAPIKey)
	}
	if gotFolder != "citilyst/reports" {
		t.Fatalf("unexpected folder %q", gotFolder)
	}
	wantSig := c.sign(map[string]string{"timestamp": "1700000000", "folder": "citilyst/reports"})
	if gotSignature != wantSig {
		t.Fatalf("signature mismatch: got %s want %s", gotSignature, wantSig)
	}
	if result.SecureURL == "" || result.PublicID == "" {
		t.Fatalf("incomplete result %+v", result)
	}
}

func TestUploadRawTargetsRawEndpoint(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(UploadResult{SecureURL: "https://res.cloudinary.com/doc.pdf"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if _, err := c.UploadRaw(context.Background(), "doc.pdf", strings.NewReader("%PDF"), ""); err != nil {
		t.Fatalf("upload raw: %v", err)
	}
	if gotPath != "/democloud/raw/upload" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestUploadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid signature"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if _, err := c.UploadImage(context.Background(), "foto.jpg", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}

func TestUploadRequiresCredentials(t *testing.T) {
	c := NewClient("", "", "")
	if c.Configured() {
		t.Fatalf("client without credentials must not report configured")
	}
	if _, err := c.UploadImage(context.Background(), "foto.jpg", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("expected error without credentials")
	}
}
