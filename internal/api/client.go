// Package api implements the HTTP client for the work-scope backend.
// All endpoints live under one base origin and speak JSON, except the
// two multipart uploads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// TurnResponse is the common response shape for upload, initial-input,
// input and voice-input.
type TurnResponse struct {
	Content          string `json:"content"`
	CurrentStage     string `json:"current_stage"`
	FollowUpQuestion string `json:"follow_up_question,omitempty"`
	TranscribedText  string `json:"transcribed_text,omitempty"`
}

// APIError is a non-2xx response from the backend. Detail carries the
// body's "detail" field when present, the HTTP status text otherwise.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Detail, e.StatusCode)
}

// Client talks to the work-scope backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL. timeout bounds
// every request including body transfer; zero means no timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateSession asks the backend for a new session id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions/create", nil)
	if err != nil {
		return "", fmt.Errorf("api: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// Upload submits a document to the ingest endpoint as a multipart form
// with field name "file".
func (c *Client) Upload(ctx context.Context, sessionID, filename string, r io.Reader) (*TurnResponse, error) {
	return c.postFile(ctx, "/sessions/"+sessionID+"/upload", "file", filename, r)
}

// SendInitial submits the first turn of a direct session.
func (c *Client) SendInitial(ctx context.Context, sessionID, input string) (*TurnResponse, error) {
	return c.postJSON(ctx, "/sessions/"+sessionID+"/initial-input", map[string]string{"initial_input": input})
}

// Send submits any turn after the first.
func (c *Client) Send(ctx context.Context, sessionID, input string) (*TurnResponse, error) {
	return c.postJSON(ctx, "/sessions/"+sessionID+"/input", map[string]string{"user_input": input})
}

// SendVoice submits recorded audio as a multipart form with field name
// "audio_file". The backend transcribes it and answers like a text turn.
func (c *Client) SendVoice(ctx context.Context, sessionID, filename string, r io.Reader) (*TurnResponse, error) {
	return c.postFile(ctx, "/sessions/"+sessionID+"/voice-input", "audio_file", filename, r)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*TurnResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("api: marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("api: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out TurnResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postFile(ctx context.Context, path, field, filename string, r io.Reader) (*TurnResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("api: building form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("api: reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("api: closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("api: building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out TurnResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes the request and decodes a 2xx JSON body into out.
// Non-2xx responses become *APIError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decoding response: %w", err)
		}
	}
	return nil
}

// decodeError extracts the backend's {detail} message, falling back to
// the HTTP status text when the body is absent or not JSON.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Detail:     http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
