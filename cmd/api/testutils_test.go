package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/config"
	"cineconsole/proj/internal/lib/logger"

	"github.com/stretchr/testify/require"
)

const loginResponse = `{"statusCode":200,"content":{"taiKhoan":"admin","hoTen":"Admin","email":"admin@example.com",` +
	`"soDT":"0900000000","maNhom":"GP01","maLoaiNguoiDung":"QuanTri","accessToken":"session-token"}}`

type syncExecutor struct{}

func (syncExecutor) Add(task func()) error {
	task()
	return nil
}

// fakeBackend answers the routes it knows and fails every other one with an
// embedded 500.
type fakeBackend struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	hits     map[string]int
	lastAuth map[string]string
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		routes:   make(map[string]http.HandlerFunc),
		hits:     make(map[string]int),
		lastAuth: make(map[string]string),
	}
	b.reply("/QuanLyNguoiDung/DangNhap", http.StatusOK, loginResponse)
	return b
}

func (b *fakeBackend) reply(path string, status int, body string) {
	b.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (b *fakeBackend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[path] = h
}

func (b *fakeBackend) calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *fakeBackend) authOf(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth[path]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	b.lastAuth[r.URL.Path] = r.Header.Get("Authorization")
	h, ok := b.routes[r.URL.Path]
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"statusCode":500,"content":"backend down"}`))
		return
	}
	h(w, r)
}

func testConfig() *config.Config {
	return &config.Config{
		GroupCode: "GP01",
		Timezone:  "Asia/Ho_Chi_Minh",
		Session: config.Session{
			CookieName: "session_id",
			TTL:        time.Hour,
		},
		Notifications: config.Notifications{
			TTL:      time.Minute,
			ErrorTTL: time.Minute,
		},
	}
}

func NewTestApplication(t *testing.T, backend http.Handler) *Application {
	t.Helper()
	if backend == nil {
		backend = newFakeBackend()
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client := cinema.New(logger.Discard(), srv.URL, "api-token", "static-token", time.Second)
	return NewApplication(testConfig(), logger.Discard(), client, syncExecutor{})
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp testResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func signIn(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rec, _ := do(t, h, http.MethodPost, "/api/v1/auth/login", map[string]string{"taiKhoan": "admin", "matKhau": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decodeData(t *testing.T, resp testResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}
