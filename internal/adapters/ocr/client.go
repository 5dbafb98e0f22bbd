// Package ocr sends receipt images to the external text extraction service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"expense-insight/internal/core/domain"

	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

// Client posts an image as multipart field "file" and expects {"text": "..."}
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates an OCR client bounded by timeout
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type extractResponse struct {
	Text *string `json:"text"`
}

// Extract returns the plain text found in image.
// Every failure wraps domain.ErrUpstreamDegraded.
func (c *Client) Extract(ctx context.Context, filename string, image io.Reader) (string, error) {
	if c.url == "" {
		return "", degraded("OCR URL is not configured")
	}

	// Uploads are renamed so client file names never reach the OCR service
	name := uuid.NewString() + filepath.Ext(filename)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return "", degraded("build form: %v", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", degraded("copy image: %v", err)
	}
	if err := form.Close(); err != nil {
		return "", degraded("close form: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return "", degraded("build request: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", degraded("call OCR service: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", degraded("read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", degraded("OCR service returned status %d", resp.StatusCode)
	}

	var out extractResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", degraded("decode response: %v", err)
	}
	if out.Text == nil {
		return "", degraded("response is missing text")
	}

	return *out.Text, nil
}

func degraded(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrUpstreamDegraded, fmt.Sprintf(format, args...))
}
