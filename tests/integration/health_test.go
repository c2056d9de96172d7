//go:build integration

package integration

import (
	"net/http"
	"testing"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func TestLiveness(t *testing.T) {
	resp := doGet(t, "/livez", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	h := decodeJSON[healthResponse](t, resp)
	if h.Status != "ok" {
		t.Errorf("status = %q, want ok", h.Status)
	}
}

func TestReadiness(t *testing.T) {
	resp := doGet(t, "/readyz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	h := decodeJSON[healthResponse](t, resp)
	if h.Status != "ok" {
		t.Errorf("status = %q, want ok", h.Status)
	}
	if len(h.Checks) != 0 {
		t.Errorf("healthy response reports failing checks: %v", h.Checks)
	}
}
