package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const shutdownTimeout = 5 * time.Second

// Server wraps http.Server with address validation and graceful shutdown.
type Server struct {
	server *http.Server
}

// New validates addr and builds the server. Timeouts leave room for a
// server-side swagger-config fetch inside a single request.
func New(addr string, handler http.Handler) (*Server, error) {
	if err := ValidateAddress(addr); err != nil {
		return nil, fmt.Errorf("server address %q: %w", addr, err)
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Start blocks serving requests. It returns nil after a clean Shutdown.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests for at most five seconds.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// ValidateAddress accepts host:port and :port listen addresses.
func ValidateAddress(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if err := is.Port.Validate(port); err != nil || port == "" {
		return validation.NewError("validation_invalid_port", "must be a valid port")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
