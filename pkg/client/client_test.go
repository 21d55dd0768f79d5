package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/habicasa/backend/pkg/client"
)

func TestVerifyCode_StoresSessionToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/verify-code":
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req["phoneNumber"] != "+50255551234" || req["code"] != "123456" {
				t.Errorf("unexpected request: %v", req)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"message": "Número verificado exitosamente",
				"token":   "session-token",
				"ally":    map[string]string{"id": "abc", "phone": "+50255551234"},
			})
		case "/api/v1/leads":
			if got := r.Header.Get("Authorization"); got != "Bearer session-token" {
				t.Errorf("Authorization: got %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{"leads": []any{}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := client.MustNew(srv.URL)
	res, err := c.VerifyCode(context.Background(), "+50255551234", "123456")
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if res.Token != "session-token" {
		t.Errorf("Token: got %q", res.Token)
	}
	if res.Ally == nil || res.Ally.Phone != "+50255551234" {
		t.Errorf("Ally: got %+v", res.Ally)
	}

	// The token from the verify response must flow into later calls.
	if _, err := c.ListLeads(context.Background()); err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
}

func TestSendVerification_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Demasiadas solicitudes. Espera 10 minutos para pedir otro código.",
		})
	}))
	defer srv.Close()

	c := client.MustNew(srv.URL)
	err := c.SendVerification(context.Background(), "+50255551234")

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode: got %d, want 429", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("Message is empty")
	}
}

func TestListProperties(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/properties" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"properties": []map[string]any{
				{"id": "p1", "title": "Casa en zona 10", "price_cents": 95000000, "currency": "GTQ", "active": true},
			},
		})
	}))
	defer srv.Close()

	c := client.MustNew(srv.URL, client.WithToken("tok"))
	props, err := c.ListProperties(context.Background())
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if len(props) != 1 || props[0].Title != "Casa en zona 10" {
		t.Errorf("properties: got %+v", props)
	}
}
