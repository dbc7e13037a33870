// Package contactclient submits contact-form drafts to POST /api/contact.
package contactclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agency-site-backend/pkg/contactform"
)

const contactPath = "/api/contact"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 64 << 10

// SubmitError is a non-2xx answer from the endpoint.
type SubmitError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *SubmitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("contact endpoint returned %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("contact endpoint returned %d: %s", e.StatusCode, e.Message)
}

// UserMessage is the server's error text, shown in the error banner.
func (e *SubmitError) UserMessage() string {
	return e.Message
}

type requestBody struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

type responseBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client implements contactform.Submitter over HTTP. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ contactform.Submitter = (*Client)(nil)

// Submit posts the draft and returns the server's success message.
func (c *Client) Submit(ctx context.Context, s contactform.Submission) (string, error) {
	payload, err := json.Marshal(requestBody{
		Name:           s.Draft.Name,
		Email:          s.Draft.Email,
		Phone:          s.Draft.Phone,
		Subject:        s.Draft.Subject,
		Message:        s.Draft.Message,
		RecaptchaToken: s.BotToken,
	})
	if err != nil {
		return "", fmt.Errorf("contactclient: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+contactPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("contactclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("contactclient: send request: %w", err)
	}
	defer resp.Body.Close()

	var body responseBody
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err == nil {
		_ = json.Unmarshal(raw, &body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SubmitError{
			StatusCode: resp.StatusCode,
			Message:    body.Error,
			Details:    body.Details,
		}
	}
	return body.Message, nil
}
