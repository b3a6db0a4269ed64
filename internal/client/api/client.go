// Package api is a Go client for the TaskKeeper HTTP API.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/TaskKeeper/internal/models"
	"github.com/google/uuid"
)

const (
	apiSignUp = "/api/auth/signup"
	apiSignIn = "/api/auth/signin"
	apiTasks  = "/api/tasks"
)

// ErrNotSignedIn is returned by task calls made before a token is set.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to a TaskKeeper server. Token is sent as a bearer
// credential on every task call.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

// New returns a Client for baseURL. A nil httpClient is replaced with one
// that has a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// NewHTTPClient returns an HTTP client that trusts the CA certificate at
// caPath only. An empty caPath yields a client using the system roots.
func NewHTTPClient(caPath string) (*http.Client, error) {
	if caPath == "" {
		return &http.Client{Timeout: 10 * time.Second}, nil
	}
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp creates an account.
func (c *Client) SignUp(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, apiSignUp, credentials{username, password}, nil, false)
}

// SignIn exchanges credentials for an access token, stores it on c and
// returns it.
func (c *Client) SignIn(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, apiSignIn, credentials{username, password}, &out, false); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("invalid response: empty access token")
	}
	c.Token = out.AccessToken
	return out.AccessToken, nil
}

// ListTasks returns the caller's tasks. Empty status or search are not sent.
func (c *Client) ListTasks(ctx context.Context, status models.TaskStatus, search string) ([]models.Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if search != "" {
		q.Set("search", search)
	}
	path := apiTasks
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks, true); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns one of the caller's tasks.
func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := c.do(ctx, http.MethodGet, apiTasks+"/"+url.PathEscape(id), nil, &t, true); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask creates an OPEN task.
func (c *Client) CreateTask(ctx context.Context, title, description string) (*models.Task, error) {
	body := map[string]string{"title": title, "description": description}
	var t models.Task
	if err := c.do(ctx, http.MethodPost, apiTasks, body, &t, true); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTaskStatus sets the status of one of the caller's tasks.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	body := map[string]models.TaskStatus{"status": status}
	var t models.Task
	if err := c.do(ctx, http.MethodPatch, apiTasks+"/"+url.PathEscape(id)+"/status", body, &t, true); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask deletes one of the caller's tasks.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, apiTasks+"/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	if authed && c.Token == "" {
		return ErrNotSignedIn
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
