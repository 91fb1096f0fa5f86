// Package envelope defines the wire-level response shape every endpoint
// the gateway exposes must conform to.
package envelope

import "time"

// ErrorInfo is the error half of a Response.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Response is the standard response shape: {success, timestamp, data?, error?}.
// Success responses never carry Error; failure responses always carry
// Error.Code.
type Response struct {
	Success   bool       `json:"success"`
	Timestamp int64      `json:"timestamp"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
}

// NowMillis returns the current time as epoch milliseconds, the unit the
// envelope's timestamp field uses on the wire.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Success builds a success envelope carrying data, stamped with the
// current time. The backend's own timestamp is never reused.
func Success(data any) Response {
	return Response{Success: true, Timestamp: NowMillis(), Data: data}
}

// Failure builds a failure envelope. message may be empty.
func Failure(code, message string) Response {
	return Response{Success: false, Timestamp: NowMillis(), Error: &ErrorInfo{Code: code, Message: message}}
}
