package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// RequestHook is called after every request with the matched route pattern
// ("unmatched" when nothing matched), the status code and the duration.
type RequestHook func(route string, code int, d time.Duration)

type Router struct {
	routes   map[string]HandlerFunc // key = METHOD:PATH
	paths    map[string]bool        // track registered paths
	patterns []string               // wildcard paths in registration order
	mounts   []mount
	logger   zerolog.Logger
	hook     RequestHook
}

// mount serves every method below a path prefix
type mount struct {
	prefix  string
	handler http.Handler
}

func New(logger zerolog.Logger) *Router {
	return &Router{
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
		logger: logger,
	}
}

// OnRequest installs a hook run after each request, e.g. for metrics
func (r *Router) OnRequest(hook RequestHook) {
	r.hook = hook
}

// ServeHTTP dispatches exact routes first, then wildcard routes in the order
// they were registered, then prefix mounts.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	route := r.dispatch(lrw, req)

	duration := time.Since(start)
	r.logRequest(req, lrw.statusCode, duration)
	if r.hook != nil {
		r.hook(route, lrw.statusCode, duration)
	}
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) string {
	path := req.URL.Path
	if h, ok := r.routes[req.Method+":"+path]; ok {
		h(w, req)
		return path
	}

	// Try to find a wildcard route
	for _, routePath := range r.patterns {
		if !matchWildcardRoute(path, routePath) {
			continue
		}
		if h, ok := r.routes[req.Method+":"+routePath]; ok {
			h(w, req)
			return routePath
		}
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return routePath
	}

	for _, m := range r.mounts {
		if strings.HasPrefix(path, m.prefix) {
			m.handler.ServeHTTP(w, req)
			return m.prefix
		}
	}

	if _, pathExists := r.paths[path]; pathExists {
		// Path exists but method not allowed
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return path
	}
	http.Error(w, "Not Found", http.StatusNotFound)
	return "unmatched"
}

func (r *Router) logRequest(req *http.Request, code int, d time.Duration) {
	var ev *zerolog.Event
	switch {
	case code >= 500:
		ev = r.logger.Error()
	case code >= 400:
		ev = r.logger.Warn()
	default:
		ev = r.logger.Info()
	}
	ev.Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", code).
		Dur("duration", d).
		Msg("request")
}

// matchWildcardRoute checks if a request path matches a wildcard route pattern
func matchWildcardRoute(requestPath, routePattern string) bool {
	// Split both paths into segments
	requestSegments := strings.Split(strings.Trim(requestPath, "/"), "/")
	routeSegments := strings.Split(strings.Trim(routePattern, "/"), "/")

	// A trailing wildcard matches one or more remaining segments
	if len(routeSegments) > 0 && routeSegments[len(routeSegments)-1] == "*" {
		if len(requestSegments) < len(routeSegments) {
			return false
		}
		for i := 0; i < len(routeSegments)-1; i++ {
			if routeSegments[i] != "*" && requestSegments[i] != routeSegments[i] {
				return false
			}
		}
		return requestSegments[len(routeSegments)-1] != ""
	}

	if len(requestSegments) != len(routeSegments) {
		return false
	}
	for i, routeSegment := range routeSegments {
		if routeSegment == "*" {
			if requestSegments[i] == "" {
				return false
			}
			continue
		}
		if requestSegments[i] != routeSegment {
			return false
		}
	}
	return true
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	key := method + ":" + path
	r.routes[key] = handler
	if strings.Contains(path, "*") && !r.paths[path] {
		r.patterns = append(r.patterns, path)
	}
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)  { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc) { r.register(http.MethodPost, path, handler) }

// Handle mounts handler for every method under prefix
func (r *Router) Handle(prefix string, handler http.Handler) {
	r.mounts = append(r.mounts, mount{prefix: prefix, handler: handler})
}

// Getter methods for testing
func (r *Router) Routes() map[string]HandlerFunc {
	return r.routes
}

func (r *Router) Paths() map[string]bool {
	return r.paths
}

// --- Start server ---

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (r *Router) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info().Str("addr", addr).Msg("🚀 Server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// PathParam returns the request path segment at index (0-based, ignoring
// leading and trailing slashes), or "" when the path is shorter.
func PathParam(req *http.Request, index int) string {
	segments := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if index < 0 || index >= len(segments) {
		return ""
	}
	return segments[index]
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}
