package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"orderdesk.dev/internal/audit"
	"orderdesk.dev/internal/auth"
	"orderdesk.dev/internal/authz"
	"orderdesk.dev/internal/orders"
)

type createOrderRequest struct {
	Customer string   `json:"customer"`
	Items    []string `json:"items"`
}

func (a *API) handleOrdersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listOrders(w, r)
	case http.MethodPost:
		a.createOrder(w, r)
	default:
		methodNotAllowed(w, r)
	}
}

// handleOrderResource routes /v1/orders/{id} and /v1/orders/{id}/{verb}.
func (a *API) handleOrderResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "order id required")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			a.getOrder(w, r, id)
		case http.MethodDelete:
			a.deleteOrder(w, r, id)
		default:
			methodNotAllowed(w, r)
		}
	case len(parts) == 2 && parts[1] == "cancel":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}
		a.cancelOrder(w, r, id)
	case len(parts) == 2 && parts[1] == "fulfill":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}
		a.fulfillOrder(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "not found")
	}
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())
	visible, err := a.orders.List(r.Context(), subject)
	if err != nil {
		a.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": visible,
	})
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	subject, _ := auth.SubjectFromContext(r.Context())
	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := a.orders.Create(r.Context(), subject, req.Customer, req.Items)
	if err != nil {
		a.orderError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "order.created", map[string]any{
		"order_id": order.ID,
		"org":      order.Org,
	})
	w.Header().Set("Location", "/v1/orders/"+order.ID)
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	subject, _ := auth.SubjectFromContext(r.Context())
	order, err := a.orders.Get(r.Context(), subject, id)
	if err != nil {
		a.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request, id string) {
	subject, _ := auth.SubjectFromContext(r.Context())
	order, err := a.orders.Cancel(r.Context(), subject, id)
	if err != nil {
		a.orderError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "order.cancelled", map[string]any{
		"order_id": order.ID,
	})
	writeJSON(w, http.StatusOK, order)
}

func (a *API) fulfillOrder(w http.ResponseWriter, r *http.Request, id string) {
	subject, _ := auth.SubjectFromContext(r.Context())
	order, err := a.orders.Fulfill(r.Context(), subject, id)
	if err != nil {
		a.orderError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "order.fulfilled", map[string]any{
		"order_id": order.ID,
	})
	writeJSON(w, http.StatusOK, order)
}

func (a *API) deleteOrder(w http.ResponseWriter, r *http.Request, id string) {
	subject, _ := auth.SubjectFromContext(r.Context())
	if err := a.orders.Delete(r.Context(), subject, id); err != nil {
		a.orderError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "order.deleted", map[string]any{
		"order_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	restored, err := a.orders.Reset(r.Context())
	if err != nil {
		a.orderError(w, r, err)
		return
	}
	audit.LogEvent(r.Context(), "orders.reset", map[string]any{
		"restored": restored,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "reset",
		"restored": restored,
	})
}

// orderError maps service errors onto HTTP status codes. Authorization
// denials keep their reason in the body so callers can tell a role gap
// from a tenant violation.
func (a *API) orderError(w http.ResponseWriter, r *http.Request, err error) {
	var denied *authz.DeniedError
	switch {
	case errors.As(err, &denied):
		audit.LogEvent(r.Context(), "authz.denied", map[string]any{
			"action": string(denied.Action),
			"reason": denied.Reason,
		})
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, orders.ErrInvalidStatus):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, orders.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	body := map[string]any{
		"error": msg,
	}
	if id := audit.RequestIDFromContext(r.Context()); id != "" {
		body["request_id"] = id
	}
	writeJSON(w, code, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
