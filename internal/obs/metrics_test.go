package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                          "/",
		"/metrics":                  "/metrics",
		"/v1/orders":                "/v1/orders",
		"/v1/orders/7":              "/v1/orders/:id",
		"/v1/orders/7/cancel":       "/v1/orders/:id/cancel",
		"/v1/orders/7/cancel/extra": "/v1/orders/7/cancel/extra",
		"/v1/orders/stream":         "/v1/orders/stream",
		"/v1/orders?limit=10":       "/v1/orders",
		"/v1/users":                 "/v1/users",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
