// Package imagehost uploads rendered sprite states to the configured image-hosting API.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ImageHost = (*Client)(nil)

// maxErrorBody caps how much of a failed response is echoed into errors.
const maxErrorBody = 512

// Client posts multipart forms of the shape {key, file} and expects {"url": ...} back.
type Client struct {
	endpoint string
	apiKey   string
	httpCli  *http.Client
}

// NewClient creates an image host client. timeout bounds each upload.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpCli:  &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends data as the form's file part and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("key", c.apiKey); err != nil {
		return "", fmt.Errorf("writing key field: %w", err)
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing file part: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("image host error (status %d): %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("image host returned no url for %s", filename)
	}

	return out.URL, nil
}
