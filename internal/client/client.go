package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// GenericFailureMessage is reported when a failed response carries no readable message
const GenericFailureMessage = "Something went wrong."

// ErrMalformedResponse is returned when a successful response body cannot be decoded
var ErrMalformedResponse = errors.New("malformed response from server")

// APIError is a non-2xx response. Message is the server's message field.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Message extracts the text to show the user for err
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrMalformedResponse) {
		return GenericFailureMessage
	}
	return err.Error()
}

// Client represents an HTTP client for the shipping-label API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new API client. Cookies set by the API are kept in an in-memory jar and sent
// back on every request.
func New(baseURL string, logger zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil) // only fails for a non-nil options value

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		logger:     logger,
	}
}

// SetHTTPClient sets a custom HTTP client. Its Jar carries the session cookie.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MessageResponse is the body most endpoints answer with
type MessageResponse struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With().Str("request_id", requestID).Str("method", method).Str("path", path).Logger()
	log.Debug().Msg("Sending API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("API request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().Int("status", resp.StatusCode).Msg("Received API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Msg("Failed to decode API response")
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var msg MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		return &APIError{StatusCode: status, Message: GenericFailureMessage}
	}
	return &APIError{StatusCode: status, Message: msg.Message}
}
