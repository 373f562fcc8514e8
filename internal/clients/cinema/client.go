package cinema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerAPIToken = "TokenCybersoft"
	maxBodyBytes   = 8 << 20
)

type ctxKey struct{}

// WithAccessToken attaches a signed-in user's access token to ctx. The client
// sends it instead of the static authorization token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(ctxKey{}).(string)
	return token
}

type Client struct {
	log        *slog.Logger
	baseURL    string
	apiToken   string
	authToken  string
	httpClient *http.Client
}

/*
	New creates a new Client instance.

It takes a logger, the backend base URL, the two static credentials sent on
every request and a per-request timeout. A zero timeout leaves requests
bounded only by their context.
*/
func New(log *slog.Logger, baseURL, apiToken, authToken string, timeout time.Duration) *Client {
	return &Client{
		log:        log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// File is an uploaded file part.
type File struct {
	Field    string
	Filename string
	Content  []byte
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query})
}

func (c *Client) delete(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodDelete, path: path, query: query})
}

func (c *Client) postJSON(ctx context.Context, path string, query url.Values, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("cinema: encoding body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		query:       query,
		body:        body,
		contentType: "application/json",
	})
}

func (c *Client) postMultipart(ctx context.Context, path string, query url.Values, values []formValue, files ...File) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for _, v := range values {
		if err := w.WriteField(v.key, v.value); err != nil {
			return nil, fmt.Errorf("cinema: writing field %s: %w", v.key, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("cinema: creating file part: %w", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("cinema: writing file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("cinema: closing multipart body: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		query:       query,
		body:        buf,
		contentType: w.FormDataContentType(),
	})
}

type formValue struct {
	key   string
	value string
}

// do executes one request and returns the raw response body. Non-2xx
// responses, and 2xx responses whose envelope reports an error statusCode,
// become *APIError or *apperr.AuthorizationError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	const op = "cinema.Client.do"
	log := c.log.With("op", op, "method", r.method, "path", r.path)

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("cinema: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIToken, c.apiToken)
	if token := accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "errMsg", err.Error())
		return nil, fmt.Errorf("cinema: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("cinema: reading response body: %w", err)
	}
	log.Debug("response received", "status", resp.StatusCode, "elapsed", time.Since(start))

	status := resp.StatusCode
	if status >= 200 && status < 300 {
		if embedded := embeddedStatus(body); embedded >= 400 {
			status = embedded
		} else {
			return body, nil
		}
	}
	return nil, newError(r.method, r.path, status, body)
}

func embeddedStatus(body []byte) int {
	var env struct {
		StatusCode int `json:"statusCode"`
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return 0
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return 0
	}
	return env.StatusCode
}
