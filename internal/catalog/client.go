// Package catalog is a small client for the OpenMetadata REST API covering
// the fixture lifecycle of the restore suite: readiness, login, creating a
// database service hierarchy, reading tables and hard-deleting the service.
package catalog

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// Sentinel errors matched by APIError.Unwrap.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")
)

// APIError is returned when the server answers with an unexpected status.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("catalog: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status >= 500:
		return ErrUnavailable
	}
	return nil
}

// Client talks to one catalog server. The zero value is not usable; call New.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger overrides the component logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the server at baseURL (e.g. http://localhost:8585).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.Component("catalog"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Authorized returns a copy of c that sends token.
func (c *Client) Authorized(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return c.baseURL }

// Version returns the server version. It needs no token.
func (c *Client) Version(ctx context.Context) (Version, error) {
	var v Version
	err := c.do(ctx, http.MethodGet, "/api/v1/system/version", nil, nil, http.StatusOK, &v)
	return v, err
}

// WaitReady polls Version every interval until it succeeds or ctx is done.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) (Version, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		v, err := c.Version(ctx)
		if err == nil {
			return v, nil
		}
		c.logger.Debug("catalog not ready", "err", err)
		select {
		case <-ctx.Done():
			return Version{}, fmt.Errorf("wait for catalog %s: %w (last error: %v)", c.baseURL, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// Login exchanges basic credentials for an access token. The server expects
// the password base64 encoded.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := loginRequest{
		Email:    email,
		Password: base64.StdEncoding.EncodeToString([]byte(password)),
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/login", nil, body, http.StatusOK, &out); err != nil {
		return out, err
	}
	if out.AccessToken == "" {
		return out, fmt.Errorf("catalog: login %s: empty access token", email)
	}
	return out, nil
}

func (c *Client) CreateDatabaseService(ctx context.Context, req CreateDatabaseService) (DatabaseService, error) {
	var out DatabaseService
	err := c.do(ctx, http.MethodPost, "/api/v1/services/databaseServices", nil, req, http.StatusCreated, &out)
	if err != nil {
		return out, fmt.Errorf("create database service %s: %w", req.Name, err)
	}
	return out, nil
}

func (c *Client) CreateDatabase(ctx context.Context, req CreateDatabase) (Database, error) {
	var out Database
	if err := c.do(ctx, http.MethodPost, "/api/v1/databases", nil, req, http.StatusCreated, &out); err != nil {
		return out, fmt.Errorf("create database %s: %w", req.Name, err)
	}
	return out, nil
}

func (c *Client) CreateDatabaseSchema(ctx context.Context, req CreateDatabaseSchema) (DatabaseSchema, error) {
	var out DatabaseSchema
	if err := c.do(ctx, http.MethodPost, "/api/v1/databaseSchemas", nil, req, http.StatusCreated, &out); err != nil {
		return out, fmt.Errorf("create database schema %s: %w", req.Name, err)
	}
	return out, nil
}

func (c *Client) CreateTable(ctx context.Context, req CreateTable) (Table, error) {
	var out Table
	if err := c.do(ctx, http.MethodPost, "/api/v1/tables", nil, req, http.StatusCreated, &out); err != nil {
		return out, fmt.Errorf("create table %s: %w", req.Name, err)
	}
	return out, nil
}

// HardDeleteService removes a service and everything beneath it. category is
// one of the *Services constants.
func (c *Client) HardDeleteService(ctx context.Context, category, fqn string) error {
	q := url.Values{}
	q.Set("recursive", "true")
	q.Set("hardDelete", "true")
	path := "/api/v1/services/" + category + "/name/" + url.PathEscape(fqn)
	if err := c.do(ctx, http.MethodDelete, path, q, nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("hard delete %s %s: %w", category, fqn, err)
	}
	c.logger.Info("hard deleted service", "category", category, "fqn", fqn)
	return nil
}

// GetTableByName reads a table by fully qualified name.
func (c *Client) GetTableByName(ctx context.Context, fqn string, include Include) (Table, error) {
	var out Table
	q := url.Values{}
	if include != "" {
		q.Set("include", string(include))
	}
	path := "/api/v1/tables/name/" + url.PathEscape(fqn)
	if err := c.do(ctx, http.MethodGet, path, q, nil, http.StatusOK, &out); err != nil {
		return out, fmt.Errorf("get table %s: %w", fqn, err)
	}
	return out, nil
}

// ListTables lists the tables of a schema.
func (c *Client) ListTables(ctx context.Context, schemaFQN string, include Include) (TableList, error) {
	var out TableList
	q := url.Values{}
	q.Set("databaseSchema", schemaFQN)
	if include != "" {
		q.Set("include", string(include))
	}
	q.Set("limit", "100")
	if err := c.do(ctx, http.MethodGet, "/api/v1/tables", q, nil, http.StatusOK, &out); err != nil {
		return out, fmt.Errorf("list tables of %s: %w", schemaFQN, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("catalog: marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("catalog: read %s %s: %w", method, path, err)
	}
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != want {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts {"message": "..."} from an error body, falling back
// to the trimmed raw body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
