// Package storage wraps the Cloudinary upload API for report attachments.
package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UploadResult is the subset of the Cloudinary response the application uses.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Client talks to the Cloudinary REST API with signed requests.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient constructs a Cloudinary client.
func NewClient(cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://api.cloudinary.com/v1_1",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}
}

// Configured reports whether credentials were supplied.
func (c *Client) Configured() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

// UploadImage uploads an image into the given folder.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader, folder string) (*UploadResult, error) {
	return c.upload(ctx, "image", filename, content, folder)
}

// UploadRaw uploads a non-image file (for example a generated PDF).
func (c *Client) UploadRaw(ctx context.Context, filename string, content io.Reader, folder string) (*UploadResult, error) {
	return c.upload(ctx, "raw", filename, content, folder)
}

// Destroy removes an uploaded asset by public id.
func (c *Client) Destroy(ctx context.Context, resourceType, publicID string) error {
	if !c.Configured() {
		return fmt.Errorf("storage: cloudinary credentials not configured")
	}
	ts := strconv.FormatInt(c.now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": ts,
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range params {
		_ = writer.WriteField(k, v)
	}
	_ = writer.WriteField("api_key", c.apiKey)
	_ = writer.WriteField("signature", c.sign(params))
	if err := writer.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s/destroy", c.baseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("storage: destroy failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) upload(ctx context.Context, resourceType, filename string, content io.Reader, folder string) (*UploadResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("storage: cloudinary credentials not configured")
	}
	ts := strconv.FormatInt(c.now().Unix(), 10)
	params := map[string]string{
		"timestamp": ts,
	}
	if folder != "" {
		params["folder"] = folder
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range params {
		_ = writer.WriteField(k, v)
	}
	_ = writer.WriteField("api_key", c.apiKey)
	_ = writer.WriteField("signature", c.sign(params))
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s/upload", c.baseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("storage: upload failed with status %d: %s", resp.StatusCode, string(payload))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("storage: decode upload response: %w", err)
	}
	return &result, nil
}

// sign builds the Cloudinary request signature: parameters sorted by name,
// joined with &, with the API secret appended, hashed with SHA-1.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
