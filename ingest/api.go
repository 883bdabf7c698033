package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/clickgate-io/clickgate/config"
	"github.com/clickgate-io/clickgate/pkg/errs"
	"github.com/clickgate-io/clickgate/pkg/types"
	"github.com/clickgate-io/clickgate/utils"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Pinger is the health probe dependency of the status endpoint.
type Pinger interface {
	Ping() error
}

// API is the authenticated HTTP surface of the ingest service.
type API struct {
	cfg *config.IngestConfig

	log    *zap.SugaredLogger
	s      *http.Server
	srv    *Service
	pinger Pinger
}

func NewAPI(cfg *config.IngestConfig, srv *Service, pinger Pinger) *API {
	api := &API{
		cfg:    cfg,
		log:    zap.S(),
		srv:    srv,
		pinger: pinger,
	}

	r := mux.NewRouter()
	r.Use(api.panicRecovery)
	r.HandleFunc("/ingest", api.auth(api.handleIngest)).Methods("POST")
	r.HandleFunc("/status", api.handleStatus).Methods("GET")
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.JsonResponse(http.StatusMethodNotAllowed, w, types.ErrorResponse{
			Error: "Method not allowed",
		})
	})

	api.s = &http.Server{
		Handler: r,
		Addr:    cfg.Listen,

		ReadTimeout:  time.Duration(cfg.TimeoutRead) * time.Second,
		WriteTimeout: time.Duration(cfg.TimeoutWrite) * time.Second,
	}

	return api
}

func (api *API) panicRecovery(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)
				buf = buf[:n]

				api.log.Errorf("panic recovered: %v\n %s", e, buf)
				utils.JsonResponse(http.StatusInternalServerError, w, types.ErrorResponse{
					Error: "internal error",
				})
			}
		}()

		h.ServeHTTP(w, r)
	})
}

func (api *API) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.cfg.Secret != "" && r.Header.Get("X-Ingest-Secret") != api.cfg.Secret {
			utils.JsonResponse(http.StatusUnauthorized, w, types.ErrorResponse{
				Error: "Unauthorized",
			})
			return
		}
		next(w, r)
	}
}

func (api *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.cfg.MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			code := http.StatusRequestEntityTooLarge
			utils.JsonResponse(code, w, types.ErrorResponse{Error: http.StatusText(code)})
			return
		}
		utils.JsonResponse(http.StatusBadRequest, w, types.ErrorResponse{
			Error: "Invalid data",
		})
		return
	}

	event, err := api.srv.Ingest(r.Context(), body)
	if err != nil {
		api.writeError(w, err)
		return
	}

	utils.JsonResponse(http.StatusCreated, w, types.IngestResponse{
		Success:   true,
		ID:        event.ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *API) writeError(w http.ResponseWriter, err error) {
	var validateErr *errs.ValidateError
	switch {
	case errors.As(err, &validateErr):
		utils.JsonResponse(http.StatusBadRequest, w, types.ErrorResponse{
			Error:   "Invalid data",
			Details: validateErr.Fields,
		})
	case errors.Is(err, errs.ErrDuplicateEvent):
		utils.JsonResponse(http.StatusConflict, w, types.ErrorResponse{
			Error:   "Duplicate event",
			Message: "This event has already been recorded",
		})
	default:
		// storage and other internal faults are logged in full and
		// surfaced generically
		api.log.Errorf("[ingest] processing error: %v", err)
		utils.JsonResponse(http.StatusInternalServerError, w, types.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to process event",
		})
	}
}

func (api *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := api.pinger.Ping(); err != nil {
		utils.JsonResponse(http.StatusServiceUnavailable, w, types.ErrorResponse{
			Error: "database unreachable",
		})
		return
	}
	utils.JsonResponse(http.StatusOK, w, map[string]string{"message": "OK"})
}

// Start starts the HTTP server
func (api *API) Start() {
	go func() {
		if err := api.s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Errorf("Failed to start ingest API: %v", err)
			os.Exit(1)
		}
	}()

	api.log.Infof("[ingest] started on %s", api.cfg.Listen)
}

// Stop stops the HTTP server
func (api *API) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := api.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("ingest shutdown: %w", err)
	}
	return nil
}
