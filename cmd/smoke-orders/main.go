package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Smoke client for a running orderdesk-api: walks one order through the
// sell/cancel flow across both tenants and checks the authorization answers.
func main() {
	base := os.Getenv("ORDERDESK_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	c := &client{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: 5 * time.Second}}

	// Start from the backup snapshot so reruns are deterministic.
	if _, code := c.do(http.MethodPost, "/v1/reset", nil, nil); code != http.StatusOK {
		log.Fatalf("reset: status %d", code)
	}

	created, code := c.do(http.MethodPost, "/v1/orders", map[string]any{
		"customer": "Initech",
		"items":    []string{"stapler", "red swingline"},
	}, headers("AcmeSales1", "Acme", "sales"))
	if code != http.StatusCreated {
		log.Fatalf("create: status %d: %s", code, created)
	}
	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(created, &order); err != nil {
		log.Fatalf("decode created order: %v", err)
	}
	if order.Status != "pending" {
		log.Fatalf("expected pending order, got %q", order.Status)
	}

	// Another rep in the same org must not cancel someone else's sale.
	if body, code := c.do(http.MethodPost, "/v1/orders/"+order.ID+"/cancel", nil, headers("AcmeSales2", "Acme", "sales")); code != http.StatusForbidden {
		log.Fatalf("peer cancel: expected 403, got %d: %s", code, body)
	}

	// The other tenant's admin must not even see it.
	if body, code := c.do(http.MethodPost, "/v1/orders/"+order.ID+"/fulfill", nil, headers("ZomboAdmin", "Zombo", "admin")); code != http.StatusForbidden {
		log.Fatalf("cross-org fulfill: expected 403, got %d: %s", code, body)
	}

	// The owning org's admin cancels.
	if body, code := c.do(http.MethodPost, "/v1/orders/"+order.ID+"/cancel", nil, headers("AcmeAdmin", "Acme", "admin")); code != http.StatusOK {
		log.Fatalf("admin cancel: status %d: %s", code, body)
	}

	fmt.Printf("✅ orderdesk smoke test passed: order=%s\n", order.ID)
}

type client struct {
	base string
	http *http.Client
}

func headers(id, org, role string) map[string]string {
	return map[string]string{
		"X-User-Id":   id,
		"X-User-Org":  org,
		"X-User-Role": role,
	}
}

func (c *client) do(method, path string, body any, hdrs map[string]string) ([]byte, int) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdrs {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	return data, resp.StatusCode
}
