package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	clickgate "github.com/clickgate-io/clickgate"
	"github.com/clickgate-io/clickgate/config"
	"github.com/clickgate-io/clickgate/model"
	"github.com/clickgate-io/clickgate/pkg/ratelimiter"
	"github.com/clickgate-io/clickgate/pkg/types"
	"github.com/clickgate-io/clickgate/utils"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const acceptCH = "Sec-CH-UA, Sec-CH-UA-Mobile, Sec-CH-UA-Platform, Sec-CH-UA-Platform-Version, Sec-CH-UA-Model, Sec-CH-UA-Full-Version-List, Sec-CH-UA-Arch, Sec-CH-UA-Bitness"
const permissionsPolicy = "ch-ua=(self), ch-ua-mobile=(self), ch-ua-platform=(self), ch-ua-platform-version=(self), ch-ua-model=(self)"

// Gateway is the public front door: it applies admission control, harvests
// request headers into server_enrichment, and forwards the merged payload
// to the ingest service.
type Gateway struct {
	cfg *config.GatewayConfig

	log     *zap.SugaredLogger
	s       *http.Server
	limiter ratelimiter.RateLimiter
	client  *resty.Client
}

func NewGateway(cfg *config.GatewayConfig, limiter ratelimiter.RateLimiter) *Gateway {
	gw := &Gateway{
		cfg:     cfg,
		log:     zap.S(),
		limiter: limiter,
		client: resty.New().
			SetTimeout(time.Duration(cfg.TimeoutForward) * time.Second).
			SetHeader("User-Agent", "clickgate/"+clickgate.VERSION),
	}

	r := mux.NewRouter()
	r.Use(panicRecovery)
	r.PathPrefix("/").HandlerFunc(gw.Handle)

	gw.s = &http.Server{
		Handler: r,
		Addr:    cfg.Listen,

		ReadTimeout:  time.Duration(cfg.TimeoutRead) * time.Second,
		WriteTimeout: time.Duration(cfg.TimeoutWrite) * time.Second,
	}

	return gw
}

// resolveOrigin echoes the caller's origin only if the allow-list permits
// it, otherwise the first configured origin.
func (gw *Gateway) resolveOrigin(origin string) string {
	if slices.Contains(gw.cfg.AllowedOrigins, origin) {
		return origin
	}
	return gw.cfg.AllowedOrigins[0]
}

func (gw *Gateway) writeHeaders(w http.ResponseWriter, r *http.Request) {
	h := w.Header()

	// advertise Client-Hints collection so the browser sends richer
	// hints on subsequent requests
	h.Set("Accept-CH", acceptCH)
	h.Set("Vary", "Sec-CH-UA, Sec-CH-UA-Mobile, Sec-CH-UA-Platform")
	h.Set("Permissions-Policy", permissionsPolicy)

	h.Set("Access-Control-Allow-Origin", gw.resolveOrigin(r.Header.Get("Origin")))
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Accept-CH")
}

func (gw *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	gw.writeHeaders(w, r)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		utils.JsonResponse(http.StatusMethodNotAllowed, w, types.ErrorResponse{
			Error:   "Method not allowed",
			Message: "Only POST requests are accepted",
		})
		return
	}

	clientKey := utils.RemoteIP(r.RemoteAddr)
	window := time.Duration(gw.cfg.RateLimit.Window) * time.Second
	res, err := gw.limiter.Allow(r.Context(), clientKey, gw.cfg.RateLimit.Quota, window)
	if err != nil {
		gw.log.Warnf("[gateway] rate limiter failure: %v", err)
	} else if !res.Allowed {
		utils.JsonResponse(http.StatusTooManyRequests, w, types.RateLimitedResponse{
			Error:      "Rate limit exceeded",
			RetryAfter: int64(res.RetryAfter.Seconds()),
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, gw.cfg.MaxRequestBodySize)
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			code := http.StatusRequestEntityTooLarge
			utils.JsonResponse(code, w, types.ErrorResponse{Error: http.StatusText(code)})
			return
		}
		utils.JsonResponse(http.StatusBadRequest, w, types.ErrorResponse{
			Error:   "Invalid JSON",
			Message: "request body must be a JSON object",
		})
		return
	}

	if missing := missingFields(payload); len(missing) > 0 {
		utils.JsonResponse(http.StatusBadRequest, w, types.ErrorResponse{
			Error:   "Missing required fields",
			Details: missing,
		})
		return
	}

	payload["server_enrichment"] = Harvest(r)

	resp, err := gw.client.R().
		SetContext(r.Context()).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Ingest-Secret", gw.cfg.IngestSecret).
		SetBody(payload).
		Post(gw.cfg.IngestURL)
	if err != nil {
		// never leak the transport error to the caller
		gw.log.Errorf("[gateway] forwarding failed: %v", err)
		utils.JsonResponse(http.StatusInternalServerError, w, types.ErrorResponse{
			Error:   "Tracking error",
			Message: "Failed to record click event",
		})
		return
	}

	if resp.StatusCode() < 300 {
		gw.log.Infof("[gateway] event accepted: number=%v button=%v id=%v",
			payload["whatsapp_number"], payload["button_name"], payload["gtm_unique_event_id"])
	}

	// relay the ingest service response verbatim
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode())
	_, _ = w.Write(resp.Body())
}

// missingFields returns the required fields that are absent or empty.
func missingFields(payload map[string]interface{}) []string {
	missing := make([]string, 0)
	for _, field := range model.RequiredFields {
		v, ok := payload[field]
		if !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Start starts the HTTP server
func (gw *Gateway) Start() {
	go func() {
		if err := gw.s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Errorf("Failed to start Gateway: %v", err)
			os.Exit(1)
		}
	}()

	gw.log.Infof("[gateway] started on %s", gw.cfg.Listen)
}

// Stop stops the HTTP server
func (gw *Gateway) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gw.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	return nil
}
