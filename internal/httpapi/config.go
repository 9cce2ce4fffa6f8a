package httpapi

import "net/http"

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. Inpaint masks travel base64-encoded, so the default is 64 MiB.
var maxBodyBytes int64 = 64 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 64 << 20
		return
	}
	maxBodyBytes = n
}

// eventsHandler serves GET /events when set.
var eventsHandler http.Handler

// SetEventsHandler installs the handler for /events (usually an events.Hub).
func SetEventsHandler(h http.Handler) { eventsHandler = h }

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
