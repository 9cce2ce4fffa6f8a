package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pixelforge/internal/provision"
	"pixelforge/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ModelsStatus() ([]types.ModelStatus, error)
	PullModel(ctx context.Context, id string, progress provision.ProgressFunc) error
	DeleteModel(id string) error
	RemoveBackground(ctx context.Context, path string) (string, error)
	Classify(ctx context.Context, path string) ([]types.Classification, error)
	StyleTransfer(ctx context.Context, path, styleID string, strength float32) (string, error)
	Upscale(ctx context.Context, path string, scale int) (string, error)
	Inpaint(ctx context.Context, path string, mask []byte, maskW, maskH int) (string, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
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

	r.Group(func(r chi.Router) {
		// Compression for JSON endpoints; the download stream flushes per line.
		r.Use(middleware.Compress(5, "application/json"))

		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			st, err := svc.ModelsStatus()
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.ModelsResponse{Models: st})
		})

		r.Delete("/models/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := svc.DeleteModel(chi.URLParam(r, "id")); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/remove-background", operation(func(ctx context.Context, r *http.Request) (any, error) {
			var req types.ImageRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			if err := requirePath(req.Path); err != nil {
				return nil, err
			}
			out, err := svc.RemoveBackground(ctx, req.Path)
			return types.OutputResponse{Output: out}, err
		}))

		r.Post("/classify", operation(func(ctx context.Context, r *http.Request) (any, error) {
			var req types.ImageRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			if err := requirePath(req.Path); err != nil {
				return nil, err
			}
			res, err := svc.Classify(ctx, req.Path)
			return types.ClassifyResponse{Results: res}, err
		}))

		r.Post("/style-transfer", operation(func(ctx context.Context, r *http.Request) (any, error) {
			var req types.StyleTransferRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			if err := requirePath(req.Path); err != nil {
				return nil, err
			}
			if strings.TrimSpace(req.StyleID) == "" {
				return nil, badRequest("style_id is required")
			}
			out, err := svc.StyleTransfer(ctx, req.Path, req.StyleID, req.Strength)
			return types.OutputResponse{Output: out}, err
		}))

		r.Post("/upscale", operation(func(ctx context.Context, r *http.Request) (any, error) {
			var req types.UpscaleRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			if err := requirePath(req.Path); err != nil {
				return nil, err
			}
			out, err := svc.Upscale(ctx, req.Path, req.Scale)
			return types.OutputResponse{Output: out}, err
		}))

		r.Post("/inpaint", operation(func(ctx context.Context, r *http.Request) (any, error) {
			var req types.InpaintRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			if err := requirePath(req.Path); err != nil {
				return nil, err
			}
			if req.MaskWidth <= 0 || req.MaskHeight <= 0 || len(req.Mask) != req.MaskWidth*req.MaskHeight {
				return nil, badRequest("invalid mask dimensions")
			}
			out, err := svc.Inpaint(ctx, req.Path, req.Mask, req.MaskWidth, req.MaskHeight)
			return types.OutputResponse{Output: out}, err
		}))
	})

	r.Post("/models/{id}/download", downloadHandler(svc))

	if eventsHandler != nil {
		r.Handle("/events", eventsHandler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// badRequest marks a request validation failure.
type badRequest string

func (e badRequest) Error() string   { return string(e) }
func (e badRequest) StatusCode() int { return http.StatusBadRequest }

// decodeBody enforces a JSON content type, then decodes into v.
func decodeBody(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return unsupportedMedia{}
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		return badRequest("invalid JSON body")
	}
	return nil
}

func requirePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return badRequest("path is required")
	}
	return nil
}

type unsupportedMedia struct{}

func (unsupportedMedia) Error() string   { return "Content-Type must be application/json" }
func (unsupportedMedia) StatusCode() int { return http.StatusUnsupportedMediaType }

// operation adapts a blocking image operation to a JSON handler with request
// logging. The work runs on a context joined with the server base context.
func operation(fn func(ctx context.Context, r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		lvl := requestLogLevel(r)
		start := time.Now()
		logStart(r, lvl)

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := fn(ctx, r)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := writeError(w, err)
			logEnd(r, lvl, status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		logEnd(r, lvl, http.StatusOK, start, nil)
	}
}

// downloadHandler streams model download progress as NDJSON. Errors before
// the first line get a JSON error response; later ones end the stream with
// an error line.
func downloadHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		lvl := requestLogLevel(r)
		start := time.Now()
		logStart(r, lvl)

		// Optional logging of NDJSON lines
		writer := io.Writer(w)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(w, &loggingLineWriter{prefix: "pull> "})
		}
		enc := json.NewEncoder(writer)
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		started := false
		last := -1
		progress := func(downloaded, total uint64) {
			pct := 0
			if total > 0 {
				pct = int(downloaded * 100 / total)
			}
			if pct == last {
				return
			}
			last = pct
			if !started {
				w.Header().Set("Content-Type", "application/x-ndjson")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			_ = enc.Encode(types.DownloadProgress{ModelID: id, Percent: pct, DownloadedBytes: downloaded, TotalBytes: total})
			if flush != nil {
				flush()
			}
		}

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		err := svc.PullModel(ctx, id, progress)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if !started {
				status := writeError(w, err)
				logEnd(r, lvl, status, start, err)
				return
			}
			_ = enc.Encode(errorBody(err))
			logEnd(r, lvl, statusFor(err), start, err)
			return
		}
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
		}
		_ = enc.Encode(types.DownloadDone{ModelID: id, Done: true})
		logEnd(r, lvl, http.StatusOK, start, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
