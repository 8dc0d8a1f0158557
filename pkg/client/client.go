// Package client is a Go API client for the nexus panel daemon. It logs in
// with panel credentials, keeps the session cookie, and wraps every HTTP
// endpoint the dashboard uses.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

const sessionCookie = "session"

// ErrAPIError wraps error payloads the panel returns with a 200 status, such
// as starting an already-running bot or deleting the root account.
var ErrAPIError = errors.New("api error")

// Client communicates with a running panel daemon.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	session string
}

// Config holds client configuration.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Logger   *slog.Logger
	TLS      *TLSClientConfig
	Insecure bool // skip TLS verification
}

// TLSClientConfig holds TLS settings for HTTPS panels.
type TLSClientConfig struct {
	CACert     string // CA certificate file path
	ServerName string
	SkipVerify bool
}

// DefaultConfig returns a configuration pointing at a local panel.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:3000",
		Timeout: 10 * time.Second,
	}
}

// New creates a panel API client.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:3000"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	transport := &http.Transport{}
	if config.TLS != nil || config.Insecure {
		tlsConfig, err := setupClientTLS(config)
		if err != nil {
			config.Logger.Error("TLS setup failed", "error", err)
		} else {
			transport.TLSClientConfig = tlsConfig
		}
	}

	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// Login authenticates and stores the session cookie for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := c.do(ctx, http.MethodPost, "/auth", body)
	if err != nil {
		return Identity{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, c.decodeError(resp)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			c.session = ck.Value
		}
	}
	if c.session == "" {
		return Identity{}, errors.New("no session cookie in login response")
	}
	var id Identity
	err = json.NewDecoder(resp.Body).Decode(&id)
	return id, err
}

// Logout tells the daemon the session is done and drops the local cookie.
func (c *Client) Logout(ctx context.Context) error {
	err := c.expectOK(ctx, http.MethodDelete, "/auth", nil)
	c.session = ""
	return err
}

// ListBots returns the bots visible to the logged-in account, keyed by id.
func (c *Client) ListBots(ctx context.Context) (map[string]Bot, error) {
	var out map[string]Bot
	err := c.getJSON(ctx, "/api/servers", &out)
	return out, err
}

// CreateBot provisions a bot and returns its id.
func (c *Client) CreateBot(ctx context.Context, req CreateBotRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/servers", body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// DeleteBot kills the bot's process and removes its record and workspace.
func (c *Client) DeleteBot(ctx context.Context, botID string) error {
	return c.expectOK(ctx, http.MethodDelete, "/api/servers/"+url.PathEscape(botID), nil)
}

// StartBot starts a bot's process.
func (c *Client) StartBot(ctx context.Context, botID string) error {
	return c.control(ctx, botID, "start")
}

// StopBot stops a bot's process. Stopping a stopped bot succeeds.
func (c *Client) StopBot(ctx context.Context, botID string) error {
	return c.control(ctx, botID, "stop")
}

func (c *Client) control(ctx context.Context, botID, action string) error {
	body, _ := json.Marshal(map[string]string{"id": botID, "action": action})
	return c.expectOK(ctx, http.MethodPost, "/api/control", body)
}

// Logs returns the panel's shared console buffer, oldest first.
func (c *Client) Logs(ctx context.Context) ([]LogEntry, error) {
	var out []LogEntry
	err := c.getJSON(ctx, "/api/logs", &out)
	return out, err
}

// Terminal runs a shell command through the panel terminal and returns its
// output. Permission denials surface as ErrAPIError.
func (c *Client) Terminal(ctx context.Context, command string) (string, error) {
	body, _ := json.Marshal(map[string]string{"command": command})
	resp, err := c.do(ctx, http.MethodPost, "/api/terminal", body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}
	var out struct {
		Output string `json:"output"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrAPIError, out.Error)
	}
	return out.Output, nil
}

// ListFiles lists the visible files in a bot's workspace.
func (c *Client) ListFiles(ctx context.Context, botID string) ([]string, error) {
	var out []string
	err := c.getJSON(ctx, "/api/files/list?serverId="+url.QueryEscape(botID), &out)
	return out, err
}

// ReadFile returns the contents of a workspace file. A missing file reads as
// empty.
func (c *Client) ReadFile(ctx context.Context, botID, name string) ([]byte, error) {
	path := "/api/files/read?serverId=" + url.QueryEscape(botID) + "&file=" + url.QueryEscape(name)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

// WriteFile creates or overwrites a workspace file.
func (c *Client) WriteFile(ctx context.Context, botID, name string, content []byte) error {
	body, _ := json.Marshal(map[string]string{
		"serverId": botID,
		"file":     name,
		"content":  string(content),
	})
	return c.expectOK(ctx, http.MethodPost, "/api/files/write?serverId="+url.QueryEscape(botID), body)
}

// DeleteFile removes a workspace file.
func (c *Client) DeleteFile(ctx context.Context, botID, name string) error {
	path := "/api/files/delete?serverId=" + url.QueryEscape(botID) + "&file=" + url.QueryEscape(name)
	return c.expectOK(ctx, http.MethodDelete, path, nil)
}

// ListUsers returns all panel accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) (map[string]Account, error) {
	var out map[string]Account
	err := c.getJSON(ctx, "/api/users", &out)
	return out, err
}

// CreateUser adds a panel login. Admin only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.expectOK(ctx, http.MethodPost, "/api/users", body)
}

// DeleteUser removes a panel login. Admin only.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.expectOK(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(username), nil)
}

// Shutdown asks the daemon to exit. Admin only.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.expectOK(ctx, http.MethodPost, "/api/shutdown", nil)
}

// IsReachable checks if the daemon answers on its base URL.
func (c *Client) IsReachable(ctx context.Context) bool {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		c.logger.Debug("daemon unreachable", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// --- plumbing ---

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// expectOK performs a request whose success is a 200 without an error field
// in the body.
func (c *Client) expectOK(ctx context.Context, method, path string, body []byte) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}
	var payload ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%w: %s", ErrAPIError, payload.Error)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) decodeError(resp *http.Response) error {
	var payload ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("%w: %s (HTTP %d)", ErrAPIError, payload.Error, resp.StatusCode)
}

// setupClientTLS configures TLS settings for the HTTP transport.
func setupClientTLS(config Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if config.Insecure {
		tlsConfig.InsecureSkipVerify = true
		return tlsConfig, nil
	}
	if config.TLS == nil {
		return tlsConfig, nil
	}
	if config.TLS.SkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}
	if config.TLS.ServerName != "" {
		tlsConfig.ServerName = config.TLS.ServerName
	}
	if config.TLS.CACert != "" {
		if err := loadCACert(tlsConfig, config.TLS.CACert); err != nil {
			return nil, fmt.Errorf("load CA certificate: %w", err)
		}
	}
	return tlsConfig, nil
}

func loadCACert(tlsConfig *tls.Config, caCertPath string) error {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return errors.New("parse CA certificate")
	}
	tlsConfig.RootCAs = pool
	return nil
}
