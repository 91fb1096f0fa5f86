// Package proxy implements ProxyEngine (spec.md §4.5): the per-request
// pipeline that resolves a service name to a live instance, forwards
// the request with a retry/timeout budget, and shapes the response or
// error into the gateway's envelope.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ecomm/api-gateway/internal/envelope"
	"ecomm/api-gateway/internal/gwerror"
	"ecomm/api-gateway/internal/headerfilter"
	"ecomm/api-gateway/internal/liveness"
	"ecomm/api-gateway/internal/loadbalancer"
	"ecomm/api-gateway/internal/logging"
	"ecomm/api-gateway/internal/metrics"
	"ecomm/api-gateway/internal/registryclient"
	"ecomm/api-gateway/internal/retry"
)

// requestIDHeader is gateway-originated metadata threaded through to
// the backend and into logs; generated when the inbound request didn't
// carry one.
const requestIDHeader = "x-request-id"

// Config carries the two independent timeout budgets spec.md §5
// describes. The forwarding client is built by New from RequestTimeout.
type Config struct {
	RequestTimeout      time.Duration // per-attempt outbound budget, default 5s
	TotalRequestTimeout time.Duration // whole retry sequence budget, default 10s
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.TotalRequestTimeout <= 0 {
		c.TotalRequestTimeout = 10 * time.Second
	}
	return c
}

// Engine is the single public entry point: Handle.
type Engine struct {
	status     *liveness.StatusCell
	registry   registryclient.Client
	balancer   loadbalancer.Balancer
	retry      *retry.Policy
	log        *logging.Logger
	metrics    *metrics.Metrics
	cfg        Config
	httpClient *http.Client
}

// New builds an Engine. m may be nil (metrics are then a no-op), since
// not every deployment needs Prometheus wired.
func New(status *liveness.StatusCell, reg registryclient.Client, balancer loadbalancer.Balancer, policy *retry.Policy, log *logging.Logger, m *metrics.Metrics, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		status:   status,
		registry: reg,
		balancer: balancer,
		retry:    policy,
		log:      log,
		metrics:  m,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Handle runs the full pipeline for one inbound request: status gate,
// resolve, select, forward-with-retry, shape. serviceName is the
// dispatched prefix ("products", "orders", ...); tailPath is the
// remainder of the path, used verbatim with no re-encoding.
func (e *Engine) Handle(w http.ResponseWriter, r *http.Request, serviceName, tailPath string) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	if st := e.status.Get(); st != liveness.StatusActive {
		e.log.Warnf("[%s] rejected %s %s: gateway status %s", requestID, r.Method, r.URL.Path, st)
		e.finish(w, serviceName, start, gwerror.Local(http.StatusServiceUnavailable, st.Code(), st.Message(), nil))
		return
	}

	ctx := r.Context()
	instances, err := e.registry.GetServices(ctx, serviceName)
	if err != nil {
		e.log.Errorf("[%s] resolve %s failed: %v", requestID, serviceName, err)
		e.finish(w, serviceName, start, gwerror.AsError(err))
		return
	}
	if len(instances) == 0 {
		e.finish(w, serviceName, start, gwerror.Local(http.StatusBadGateway, "GATEWAY_ERROR", "no instances available for "+serviceName, nil))
		return
	}
	target, err := e.balancer.Select(serviceName, instances)
	if err != nil {
		e.finish(w, serviceName, start, gwerror.Local(http.StatusBadGateway, "GATEWAY_ERROR", err.Error(), nil))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		e.finish(w, serviceName, start, gwerror.BuildFailed(err))
		return
	}
	reqHeaders := headerfilter.FilterRequest(r.Header)
	reqHeaders.Set(requestIDHeader, requestID)
	targetURL := "https://" + target.Host + ":" + strconv.Itoa(target.Port) + "/" + tailPath

	attempt := 0
	for {
		status, respHeaders, respBody, attemptErr := e.forwardOnce(ctx, r.Method, targetURL, reqHeaders, body)
		if attemptErr == nil {
			e.metrics.RecordAttempt(serviceName, "success")
			e.writeSuccess(w, status, respHeaders, respBody)
			e.metrics.RecordRequest(serviceName, strconv.Itoa(status), time.Since(start).Seconds())
			return
		}
		ge := gwerror.AsError(attemptErr)
		if !e.retry.ShouldRetry(ge, attempt) {
			e.metrics.RecordAttempt(serviceName, "terminal_error")
			e.log.Warnf("[%s] %s %s failed, no retry: %v", requestID, r.Method, targetURL, ge)
			e.finish(w, serviceName, start, ge)
			return
		}
		if time.Since(start) >= e.cfg.TotalRequestTimeout {
			e.metrics.RecordAttempt(serviceName, "terminal_error")
			e.finish(w, serviceName, start, gwerror.Local(http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "retry budget exhausted", nil))
			return
		}
		e.metrics.RecordAttempt(serviceName, "retryable_error")
		e.metrics.RecordRetry(serviceName)
		attempt++
		e.log.Debugf("[%s] retrying %s %s, attempt %d: %v", requestID, r.Method, targetURL, attempt, ge)
		e.retry.Sleep(ctx, attempt)
		if ctx.Err() != nil {
			return // client disconnected; never respond to it.
		}
	}
}

// finish shapes and emits a terminal error, recording its duration.
func (e *Engine) finish(w http.ResponseWriter, serviceName string, start time.Time, ge *gwerror.Error) {
	e.writeError(w, ge)
	status := ge.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	e.metrics.RecordRequest(serviceName, strconv.Itoa(status), time.Since(start).Seconds())
}

// forwardOnce issues a single outbound attempt and classifies the
// outcome per spec.md §4.5.4.
func (e *Engine) forwardOnce(ctx context.Context, method, url string, headers http.Header, body []byte) (int, http.Header, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, gwerror.BuildFailed(err)
	}
	req.Header = headers.Clone()

	resp, err := e.httpClient.Do(req)
	if err != nil {
		var ne interface{ Timeout() bool }
		timeout := errors.As(err, &ne) && ne.Timeout()
		if attemptCtx.Err() == context.DeadlineExceeded {
			timeout = true
		}
		return 0, nil, nil, gwerror.Transport(err, timeout)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, gwerror.Transport(err, false)
	}
	filtered := headerfilter.FilterResponse(resp.Header)
	if resp.StatusCode/100 != 2 {
		return 0, nil, nil, gwerror.BackendResponse(resp.StatusCode, decodeBackendEnvelope(raw), string(raw), filtered)
	}
	return resp.StatusCode, filtered, raw, nil
}

// writeSuccess unwraps the backend's envelope and re-wraps it with a
// fresh timestamp (spec.md §4.5's note: the backend's own timestamp is
// discarded).
func (e *Engine) writeSuccess(w http.ResponseWriter, status int, headers http.Header, raw []byte) {
	var backendData any
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &backendData)
	}
	for k, vs := range headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope.Success(backendData))
}

func (e *Engine) writeError(w http.ResponseWriter, ge *gwerror.Error) {
	for k, vs := range ge.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	status := ge.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	resp := envelope.Failure(ge.Code, ge.Message)
	resp.Data = ge.Data
	_ = json.NewEncoder(w).Encode(resp)
}

func decodeBackendEnvelope(raw []byte) *gwerror.BackendEnvelope {
	var env gwerror.BackendEnvelope
	if json.Unmarshal(raw, &env) != nil {
		return nil
	}
	return &env
}
