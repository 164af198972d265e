package httpapi

import (
	"net/http"
	"testing"

	"orderdesk.dev/internal/auth"
	"orderdesk.dev/internal/orders"
)

func enableTokenAuth(t *testing.T) {
	t.Helper()
	t.Setenv("ORDERDESK_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)
}

func (c *apiClient) obtainToken(user string) string {
	c.t.Helper()
	resp := c.post("/v1/auth/token", map[string]any{"user": user}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected token status: %d", resp.StatusCode)
	}
	body := decode[struct {
		Token string `json:"token"`
	}](c.t, resp)
	if body.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return body.Token
}

func TestTokenAuthRoundTrip(t *testing.T) {
	enableTokenAuth(t)
	api := newTestAPI(t, nil)

	token := api.obtainToken("AcmeSales1")

	resp := api.post("/v1/orders", map[string]any{
		"customer": "Initech",
		"items":    []string{"stapler"},
	}, map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 with bearer token, got %d", resp.StatusCode)
	}
	created := decode[orders.Order](t, resp)
	if created.SoldBy != "AcmeSales1" || created.Org != "Acme" {
		t.Fatalf("token subject not applied: %+v", created)
	}
}

func TestTokenForUnknownUser(t *testing.T) {
	enableTokenAuth(t)
	api := newTestAPI(t, nil)

	resp := api.post("/v1/auth/token", map[string]any{"user": "Nobody"}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func TestInvalidBearerTokenIs401(t *testing.T) {
	enableTokenAuth(t)
	api := newTestAPI(t, nil)

	resp := api.get("/v1/orders", nil, map[string]string{"Authorization": "Bearer garbage"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestTokenEndpointDisabledWithoutSecret(t *testing.T) {
	t.Setenv("ORDERDESK_AUTH_SECRET", "")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)
	api := newTestAPI(t, nil)

	resp := api.post("/v1/auth/token", map[string]any{"user": "AcmeSales1"}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when auth is not configured, got %d", resp.StatusCode)
	}
}

func TestHeaderIdentityIgnoredWhenTokenPresent(t *testing.T) {
	enableTokenAuth(t)
	api := newTestAPI(t, nil)

	token := api.obtainToken("AcmeWarehouse")
	headers := asUser("AcmeAdmin", "Acme", "admin")
	headers["Authorization"] = "Bearer " + token

	// Warehouse token wins over admin headers, so create is denied.
	resp := api.post("/v1/orders", map[string]any{
		"customer": "Initech",
		"items":    []string{"stapler"},
	}, headers)
	checkDenied(t, resp, "role lacks permission")
}
