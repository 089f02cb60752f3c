package swaggerconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxConfigBytes = 1 << 20

var ErrInvalidConfig = errors.New("invalid swagger config")

// StatusError reports a non-2xx answer from the config endpoint.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Fetcher retrieves a swagger-config document.
type Fetcher interface {
	Fetch(ctx context.Context) (*SwaggerConfig, error)
}

type Client struct {
	configURL  string
	httpClient *http.Client
}

func NewClient(configURL string, timeout time.Duration) *Client {
	return &Client{
		configURL:  configURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wireConfig keeps urls as a pointer so a missing field can be told apart
// from an empty list. The optional strings are decoded leniently: a value
// that is not a string counts as absent.
type wireConfig struct {
	URLs         *[]SwaggerURL   `json:"urls"`
	ValidatorURL json.RawMessage `json:"validatorUrl"`
	ConfigURL    json.RawMessage `json:"configUrl"`
}

func (w wireConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.URLs, validation.NotNil.Error("is required")),
	)
}

// Fetch performs a single GET of the config URL.
func (c *Client) Fetch(ctx context.Context) (*SwaggerConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.configURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch swagger config: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{URL: c.configURL, Code: res.StatusCode}
	}

	return Decode(io.LimitReader(res.Body, maxConfigBytes))
}

// Decode parses a swagger-config document. The urls field is mandatory and
// the reader must hold exactly one JSON value.
func Decode(r io.Reader) (*SwaggerConfig, error) {
	var wire wireConfig
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidConfig)
	}
	if err := wire.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &SwaggerConfig{
		URLs:         *wire.URLs,
		ValidatorURL: optionalString(wire.ValidatorURL),
		ConfigURL:    optionalString(wire.ConfigURL),
	}, nil
}

func optionalString(raw json.RawMessage) *string {
	var s *string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return s
}
