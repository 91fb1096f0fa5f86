// Package adminapi implements the JWT-protected operator surface
// (SPEC_FULL.md §4): gateway status introspection and a manual
// re-registration trigger, grounded on the teacher's admin.Handler
// shape but pointed at gateway lifecycle instead of service CRUD.
package adminapi

import (
	"net/http"

	"ecomm/api-gateway/internal/envelope"
	"ecomm/api-gateway/internal/liveness"
	"ecomm/api-gateway/internal/registryclient"
	"ecomm/api-gateway/internal/util"
)

// credentialReader is the narrow seam adminapi needs from a
// registryclient.Client to redact-display the current credential; the
// concrete *registryclient.HTTPClient and *registryclient.CachingClient
// satisfy it, a test double need not.
type credentialReader interface {
	Credential() registryclient.Credential
}

// Handler serves /admin/status and /admin/reregister.
type Handler struct {
	controller *liveness.Controller
	registry   registryclient.Client
}

func NewHandler(controller *liveness.Controller, reg registryclient.Client) *Handler {
	return &Handler{controller: controller, registry: reg}
}

// statusResponse is the shape returned by GET /admin/status.
type statusResponse struct {
	Status                        string `json:"status"`
	ServiceID                     string `json:"serviceId,omitempty"`
	LastProbeAt                   int64  `json:"lastProbeAtMillis,omitempty"`
	LastProbeOutcome              string `json:"lastProbeOutcome,omitempty"`
	ConsecutiveProbeFailures      int    `json:"consecutiveProbeFailures"`
	ConsecutiveReregisterFailures int    `json:"consecutiveReregisterFailures"`
}

// Status reports the gateway's current lifecycle state and probe
// history. Pure introspection; never changes proxying behavior.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		util.WriteJSON(w, http.StatusMethodNotAllowed, envelope.Failure("METHOD_NOT_ALLOWED", ""))
		return
	}
	snap := h.controller.Snapshot()
	resp := statusResponse{
		Status:                        snap.Status.String(),
		LastProbeOutcome:              snap.LastProbeOutcome,
		ConsecutiveProbeFailures:      snap.ConsecutiveProbeFailures,
		ConsecutiveReregisterFailures: snap.ConsecutiveReregisterFailures,
	}
	if !snap.LastProbeAt.IsZero() {
		resp.LastProbeAt = snap.LastProbeAt.UnixMilli()
	}
	if cr, ok := h.registry.(credentialReader); ok {
		resp.ServiceID = cr.Credential().ServiceID // token deliberately omitted
	}
	util.WriteJSON(w, http.StatusOK, envelope.Success(resp))
}

// Reregister manually drives the controller into REREGISTERING, the
// operator escape hatch for a registry-side credential rotation. Uses
// the exact same subroutine the automatic 401 path uses.
func (h *Handler) Reregister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		util.WriteJSON(w, http.StatusMethodNotAllowed, envelope.Failure("METHOD_NOT_ALLOWED", ""))
		return
	}
	h.controller.ForceReregister()
	util.WriteJSON(w, http.StatusAccepted, envelope.Success(map[string]string{"status": "REREGISTERING"}))
}
