package fallback

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Body struct {
	Error            string         `json:"error"`
	Message          string         `json:"message"`
	Timestamp        time.Time      `json:"timestamp"`
	Service          string         `json:"service"`
	Fallback         bool           `json:"fallback"`
	Suggestion       string         `json:"suggestion"`
	SupportContact   string         `json:"supportContact,omitempty"`
	EmergencyContact string         `json:"emergencyContact,omitempty"`
	Note             string         `json:"note,omitempty"`
	Data             map[string]any `json:"data,omitempty"`
}

type serviceFallback struct {
	body     Body
	critical bool
}

var templates = map[string]serviceFallback{
	"user": {body: Body{
		Error:      "User Service Unavailable",
		Message:    "User management service is currently unavailable.",
		Service:    "user-service",
		Suggestion: "Please try accessing your account later",
	}},
	"auth": {critical: true, body: Body{
		Error:      "Authentication Service Unavailable",
		Message:    "Authentication service is currently unavailable. Please try logging in later.",
		Service:    "user-service",
		Suggestion: "Please try logging in again in a few minutes",
	}},
	"movie": {body: Body{
		Error:      "Movie Service Unavailable",
		Message:    "The movie catalogue is currently unavailable.",
		Service:    "movie-service",
		Suggestion: "Please check back in a few minutes",
	}},
	"theatre": {body: Body{
		Error:      "Theatre Service Unavailable",
		Message:    "The theatre service is currently experiencing issues. Please try again later.",
		Service:    "theatre-service",
		Suggestion: "Try browsing available movies or check back in a few minutes",
	}},
	"booking": {body: Body{
		Error:          "Booking Service Unavailable",
		Message:        "The booking service is currently unavailable. Your booking request could not be processed.",
		Service:        "booking-service",
		Suggestion:     "Please try booking again in a few minutes. No charges have been made.",
		SupportContact: "support@moviebooking.com",
	}},
	"payment": {critical: true, body: Body{
		Error:            "Payment Service Unavailable",
		Message:          "Payment processing is currently unavailable. No charges have been made.",
		Service:          "payment-service",
		Suggestion:       "Please retry your payment in a few minutes or contact support",
		SupportContact:   "payments@moviebooking.com",
		EmergencyContact: "+1-800-MOVIE-HELP",
	}},
	"notification": {body: Body{
		Error:      "Notification Service Unavailable",
		Message:    "Notification service is currently unavailable.",
		Service:    "notification-service",
		Suggestion: "Notifications will be sent once service is restored",
	}},
	"search": {body: Body{
		Error:      "Search Service Unavailable",
		Message:    "Search functionality is currently unavailable.",
		Service:    "search-service",
		Suggestion: "Try browsing by category or check back later",
	}},
	"ticket": {body: Body{
		Error:      "Ticket Service Unavailable",
		Message:    "Ticket generation service is currently unavailable.",
		Service:    "ticket-service",
		Suggestion: "Your booking is confirmed. Tickets will be available shortly.",
		Note:       "Check your email for booking confirmation",
	}},
}

// key accepts both route names ("payment") and service ids
// ("payment-service").
func key(service string) string {
	return strings.TrimSuffix(strings.ToLower(service), "-service")
}

// For returns the fallback body for a service, or a generic one for
// services without a dedicated message.
func For(service string, now time.Time) Body {
	k := key(service)

	t, ok := templates[k]
	if !ok {
		return Body{
			Error:      "Service Unavailable",
			Message:    "The requested service is currently unavailable.",
			Timestamp:  now,
			Service:    k + "-service",
			Fallback:   true,
			Suggestion: "Please try again in a few minutes",
		}
	}

	body := t.body
	body.Timestamp = now
	body.Fallback = true
	if k == "search" {
		body.Data = map[string]any{
			"movies":      []any{},
			"theatres":    []any{},
			"suggestions": []any{},
		}
	}
	return body
}

// Write answers 503 with the service's fallback body. Payment and
// authentication outages are logged as errors, the rest as warnings.
func Write(w http.ResponseWriter, r *http.Request, service string, logger *slog.Logger) {
	body := For(service, time.Now().UTC())

	level := slog.LevelWarn
	if templates[key(service)].critical {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "Service fallback triggered", slog.String("service", body.Service))

	writeJSON(w, http.StatusServiceUnavailable, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
