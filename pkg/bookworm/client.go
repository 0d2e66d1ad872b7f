package bookworm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/bookworm-shop/storefront/pkg/config"
	pkgerrors "github.com/bookworm-shop/storefront/pkg/errors"
	"github.com/bookworm-shop/storefront/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Client talks to the remote bookworm catalog/auth/order API.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *logger.Logger
}

// NewClient validates the backend configuration and builds the HTTP client.
// A cookie jar is attached because the auth endpoints use a bearer plus
// cookie scheme.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing backend base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}

	return &Client{
		baseURL: base,
		httpc: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logger: logg,
	}, nil
}

// apiError carries a non-2xx backend response before domain mapping.
type apiError struct {
	Status int
	Detail string
}

func (e *apiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, req request, dst any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling bookworm backend")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apiError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding backend response")
	}
	return nil
}

// readDetail extracts the FastAPI-style {"detail": "..."} error body. A
// non-string detail is flattened to its JSON text.
func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	return string(envelope.Detail)
}

// mapError converts a backend status into the storefront error taxonomy.
func mapError(err error) error {
	var ae *apiError
	if !errors.As(err, &ae) {
		return err
	}
	switch ae.Status {
	case http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "wrong email or password")
	case http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, "you do not have permission to access this resource")
	case http.StatusNotFound:
		msg := ae.Detail
		if msg == "" {
			msg = "the requested resource was not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		msg := ae.Detail
		if msg == "" {
			msg = "invalid request"
		}
		return pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	if ae.Status >= 500 {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ae, "server error, please try again later")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, ae, fmt.Sprintf("request failed with status %d", ae.Status))
}
