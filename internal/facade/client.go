package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/models"
)

// APIError is a non-2xx response from the server. Error and Details carry
// the server's JSON error body.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client implements Facade against a running server's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchLayout retrieves the email layout document.
func (c *Client) FetchLayout(ctx context.Context) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		Layout  string `json:"layout"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/getEmailLayout", nil, "", &out); err != nil {
		return "", err
	}
	return out.Layout, nil
}

// UploadImage posts the image as the multipart "image" field.
func (c *Client) UploadImage(ctx context.Context, data []byte, filename string) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("upload image form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("upload image form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload image form: %w", err)
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/uploadImage", &body, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveTemplate posts the template record.
func (c *Client) SaveTemplate(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("save template marshal: %w", err)
	}
	var out SaveResult
	if err := c.do(ctx, http.MethodPost, "/api/uploadEmailConfig", bytes.NewReader(payload), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Template fetches a saved template record.
func (c *Client) Template(ctx context.Context, id string) (*models.Template, error) {
	var out struct {
		Success  bool             `json:"success"`
		Template *models.Template `json:"template"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/renderAndDownloadTemplate/"+url.PathEscape(id), nil, "", &out); err != nil {
		return nil, err
	}
	return out.Template, nil
}

// Templates lists saved templates newest first.
func (c *Client) Templates(ctx context.Context, limit, offset int) ([]models.Template, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out struct {
		Success   bool              `json:"success"`
		Templates []models.Template `json:"templates"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/templates?"+q.Encode(), nil, "", &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

// DeleteTemplate removes a saved template.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodDelete, "/api/templates/"+url.PathEscape(id), nil, "", &out)
}

// Download fetches the rendered document of a saved template.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/templates/"+url.PathEscape(id)+"/download", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &canvas.IOError{Op: "read download", Err: err}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &canvas.IOError{Op: method + " " + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// send performs the request and turns non-2xx responses into errors:
// 400 becomes a ValidationError, everything else an IOError wrapping APIError.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &canvas.IOError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return nil, &canvas.ValidationError{Message: apiErr.Message}
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", apiErr.Message, canvas.ErrNotFound)
	}
	return nil, &canvas.IOError{Op: method + " " + path, Err: apiErr}
}
