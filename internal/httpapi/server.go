package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adapterd/internal/serving"
	"adapterd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	SubmitGeneration(ctx context.Context, req serving.GenerationRequest) (serving.GenerationResult, error)
	SwitchAdapter(ctx context.Context, name string) (serving.AdapterSwitchResult, error)
	RegisterAdapter(name, locator string) error
	EvictAdapter(name string) error
	ListAdapters() types.AdaptersResponse
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the HTTP routing for the daemon.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/generate", handleGenerate(svc))
	r.Post("/switch", handleSwitch(svc))
	r.Get("/adapters", handleListAdapters(svc))
	r.Post("/adapters", handleRegister(svc))
	r.Delete("/adapters/{name}", handleEvict(svc))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleGenerate godoc
// @Summary      Run a generation against the composed model
// @Accept       json
// @Produce      json
// @Param        request body types.GenerateRequest true "generation request"
// @Success      200 {object} types.GenerateResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		start := time.Now()
		logRequest(r).Int("prompt_len", len(req.Prompt)).Msg("generate start")

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.SubmitGeneration(ctx, serving.GenerationRequest{
			Prompt:   req.Prompt,
			Sampling: req.Sampling,
		})
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeServingError(w, err)
			logRequest(r).Err(err).Dur("dur", time.Since(start)).Msg("generate end")
			return
		}
		writeJSON(w, http.StatusOK, types.GenerateResponse{
			ID:         res.ID,
			Text:       res.Text,
			Adapter:    res.Adapter,
			DurationMS: res.Duration.Milliseconds(),
		})
		logRequest(r).Str("adapter", res.Adapter).Dur("dur", time.Since(start)).Msg("generate end")
	}
}

// handleSwitch godoc
// @Summary      Switch the active adapter
// @Accept       json
// @Produce      json
// @Param        request body types.SwitchRequest true "switch request"
// @Success      200 {object} types.SwitchResponse
// @Failure      404 {object} types.ErrorResponse
// @Failure      422 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Failure      502 {object} types.ErrorResponse
// @Router       /switch [post]
func handleSwitch(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SwitchRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start := time.Now()
		logRequest(r).Str("adapter", req.Adapter).Msg("switch start")

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.SwitchAdapter(ctx, req.Adapter)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeServingError(w, err)
			logRequest(r).Err(err).Dur("dur", time.Since(start)).Msg("switch end")
			return
		}
		writeJSON(w, http.StatusOK, types.SwitchResponse{
			OpID:     res.OpID,
			Active:   res.Active,
			Previous: res.Previous,
		})
		logRequest(r).Str("active", res.Active).Dur("dur", time.Since(start)).Msg("switch end")
	}
}

// handleListAdapters godoc
// @Summary      List registered adapters and their load state
// @Produce      json
// @Success      200 {object} types.AdaptersResponse
// @Router       /adapters [get]
func handleListAdapters(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.ListAdapters())
	}
}

// handleRegister godoc
// @Summary      Register an adapter
// @Accept       json
// @Produce      json
// @Param        request body types.RegisterRequest true "adapter registration"
// @Success      201 {object} types.RegisterRequest
// @Failure      409 {object} types.ErrorResponse
// @Router       /adapters [post]
func handleRegister(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Locator) == "" {
			writeJSONError(w, http.StatusBadRequest, "name and locator are required")
			return
		}
		if err := svc.RegisterAdapter(req.Name, req.Locator); err != nil {
			writeServingError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	}
}

// handleEvict godoc
// @Summary      Evict an adapter's resident weights
// @Produce      json
// @Param        name path string true "adapter name"
// @Success      204
// @Failure      404 {object} types.ErrorResponse
// @Failure      409 {object} types.ErrorResponse
// @Router       /adapters/{name} [delete]
func handleEvict(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := svc.EvictAdapter(name); err != nil {
			writeServingError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// decodeJSON enforces content type and body limits, reporting false after
// writing the error response.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
