package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecomm/api-gateway/internal/liveness"
	"ecomm/api-gateway/internal/loadbalancer"
	"ecomm/api-gateway/internal/logging"
	"ecomm/api-gateway/internal/registryclient"
	"ecomm/api-gateway/internal/retry"
)

type fakeRegistry struct {
	cred registryclient.Credential
}

func (f *fakeRegistry) Register(ctx context.Context, port int) (registryclient.Credential, error) {
	return f.cred, nil
}
func (f *fakeRegistry) GetServices(ctx context.Context, serviceType string) ([]loadbalancer.Instance, error) {
	return nil, nil
}
func (f *fakeRegistry) Health(ctx context.Context) (registryclient.HealthStatus, error) {
	return registryclient.HealthStatus{Status: "UP"}, nil
}
func (f *fakeRegistry) Credential() registryclient.Credential { return f.cred }

func fastPolicy() *retry.Policy {
	cfg := retry.DefaultConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return retry.New(cfg)
}

func TestStatus_ReportsSnapshotAndRedactsToken(t *testing.T) {
	reg := &fakeRegistry{cred: registryclient.Credential{ServiceID: "gw-1", Token: "super-secret"}}
	status := liveness.NewStatusCell(liveness.StatusActive)
	controller := liveness.New(reg, fastPolicy(), logging.New("test", logging.LevelError), status, liveness.Options{}, nil)
	h := NewHandler(controller, reg)

	req := httptest.NewRequest(http.MethodGet, "/admin/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "super-secret") {
		t.Fatalf("expected token to never appear in the status response, got %s", rec.Body.String())
	}
	var decoded struct {
		Data struct {
			Status    string `json:"status"`
			ServiceID string `json:"serviceId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Data.Status != "ACTIVE" {
		t.Fatalf("expected ACTIVE status, got %q", decoded.Data.Status)
	}
	if decoded.Data.ServiceID != "gw-1" {
		t.Fatalf("expected serviceId gw-1, got %q", decoded.Data.ServiceID)
	}
}

func TestStatus_RejectsNonGet(t *testing.T) {
	reg := &fakeRegistry{}
	status := liveness.NewStatusCell(liveness.StatusActive)
	controller := liveness.New(reg, fastPolicy(), logging.New("test", logging.LevelError), status, liveness.Options{}, nil)
	h := NewHandler(controller, reg)

	req := httptest.NewRequest(http.MethodPost, "/admin/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestReregister_TransitionsToReregisteringAndAccepts(t *testing.T) {
	reg := &fakeRegistry{}
	status := liveness.NewStatusCell(liveness.StatusActive)
	controller := liveness.New(reg, fastPolicy(), logging.New("test", logging.LevelError), status, liveness.Options{}, nil)
	h := NewHandler(controller, reg)

	req := httptest.NewRequest(http.MethodPost, "/admin/reregister", nil)
	rec := httptest.NewRecorder()
	h.Reregister(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if status.Get() != liveness.StatusReregistering && status.Get() != liveness.StatusActive {
		t.Fatalf("expected REREGISTERING or settled back to ACTIVE, got %v", status.Get())
	}
}
