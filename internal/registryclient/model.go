package registryclient

import "encoding/json"

// Credential is obtained once at registration and attached as
// x-service-id/x-service-token on every subsequent registry call.
// Mutated only by a successful Register; invalidated by a 401.
type Credential struct {
	ServiceID string `json:"serviceId"`
	Token     string `json:"token"`
}

// HealthStatus is the decoded result of a registry health probe.
type HealthStatus struct {
	Status string `json:"status"` // "UP" | "DOWN"
}

// Up reports whether the probe result is healthy.
func (h HealthStatus) Up() bool { return h.Status == "UP" }

type registerRequest struct {
	Port        int    `json:"port"`
	ServiceType string `json:"serviceType"`
}

// apiEnvelope mirrors the ApiResponse envelope shape used on the wire
// between the gateway and the registry: {success, data, error}. Data is
// decoded a second time per-call into the concrete type each operation
// expects.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *apiErrorOnWire `json:"error,omitempty"`
}

type apiErrorOnWire struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// registrySelfType is the serviceType the gateway registers itself under.
const registrySelfType = "api-gateway"
