package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "inkwell_session"

// HTTPClient implements Client over the server's JSON endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the server at baseURL
// (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *HTTPClient) SetSessionToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) sessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	body := protocol.RegisterRequest{Email: email, Password: password}
	return c.doJSON(ctx, http.MethodPost, "/api/register", body, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(protocol.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.errorFromResponse(resp)
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookieName {
			c.SetSessionToken(ck.Value)
			return ck.Value, nil
		}
	}
	return "", fmt.Errorf("login response carried no session cookie")
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
	if err == nil {
		c.SetSessionToken("")
	}
	return err
}

func (c *HTTPClient) Mutate(ctx context.Context, name string, args any) (*protocol.MutationResponse, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req := protocol.MutationRequest{Name: name, Args: raw}

	var resp protocol.MutationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/mutation", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Query(ctx context.Context, name string, args any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	req := protocol.QueryRequest{Name: name, Args: raw}

	var resp protocol.QueryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/query", req, &resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sessionToken(); token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return c.errorFromResponse(resp)
}

// errorFromResponse maps a non-2xx answer onto the error taxonomy: 401 is an
// authorization failure, 429 and 5xx are transient, everything else is a
// terminal validation-class failure.
func (c *HTTPClient) errorFromResponse(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var body protocol.ErrorResponse
	_ = json.Unmarshal(payload, &body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		if body.RetryAfterSeconds > 0 {
			return &RateLimitedError{RetryAfter: time.Duration(body.RetryAfterSeconds) * time.Second}
		}
		return &TransientError{Err: fmt.Errorf("http %d: %s", resp.StatusCode, body.Error)}
	case resp.StatusCode >= 500:
		return &TransientError{Err: fmt.Errorf("http %d: %s", resp.StatusCode, body.Error)}
	default:
		if body.Error != "" {
			return fmt.Errorf("%w: %s", common.ErrorValidation, body.Error)
		}
		return fmt.Errorf("%w: http %d", common.ErrorValidation, resp.StatusCode)
	}
}
