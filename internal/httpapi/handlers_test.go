package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"orderdesk.dev/internal/directory"
	"orderdesk.dev/internal/orders"
	"orderdesk.dev/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T, seed map[string]orders.Order) *apiClient {
	t.Helper()

	users := directory.Demo()
	st := stream.New()
	svc, err := orders.NewService(orders.NewMemory(seed), users, orders.WithStream(st))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	api := New(ReadyProbe{}, "test", svc, users, st)
	api.rateBurst = 100
	api.ratePerSec = 100

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

// asUser builds the trusted identity headers for a demo caller.
func asUser(id, org, role string) map[string]string {
	return map[string]string{
		headerUserID:   id,
		headerUserOrg:  org,
		headerUserRole: role,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
	if body["version"] != "test" {
		t.Fatalf("expected version test, got %v", body["version"])
	}
}

func TestReadyz(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/readyz", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestInfo(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/v1/info", nil, nil)
	body := decode[map[string]any](t, resp)
	if body["name"] != "orderdesk-api" {
		t.Fatalf("unexpected info body: %v", body)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/v1/nope", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/healthz", nil, nil)
	defer resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}
}

func TestUsersListing(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.get("/v1/users", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode[struct {
		Users map[string]userInfo `json:"users"`
	}](t, resp)

	if len(body.Users) != 8 {
		t.Fatalf("expected 8 demo users, got %d", len(body.Users))
	}
	admin, ok := body.Users["AcmeAdmin"]
	if !ok {
		t.Fatalf("AcmeAdmin missing from listing")
	}
	if admin.Org != "Acme" || admin.Role != "admin" {
		t.Fatalf("unexpected AcmeAdmin entry: %+v", admin)
	}
	if len(admin.Permissions) != 5 {
		t.Fatalf("expected 5 admin permissions, got %v", admin.Permissions)
	}
}
