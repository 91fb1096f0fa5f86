package util

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as the response body with status and
// content-type, used by the admin handlers and JWTAuth's rejections
// (proxy.Engine writes envelopes directly so it can stream backend
// headers first; dispatch and docs encode their JSON inline).
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
