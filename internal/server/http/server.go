package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/daybook-io/daybook/internal/app"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host string
	Port int
}

type Server struct {
	srv  *http.Server
	app  *app.App
	addr string
}

func NewServer(config Config, app *app.App) *Server {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	return &Server{
		addr: addr,
		app:  app,
		srv:  &http.Server{Addr: addr},
	}
}

func (s *Server) Start(_ context.Context) error {
	mux := runtime.NewServeMux()
	if err := s.registerRoutes(mux); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}
	s.srv.Handler = loggingMiddleware(mux)

	log.Printf("starting http server on %s", s.addr)
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *runtime.ServeMux) error {
	routes := []struct {
		method  string
		path    string
		handler runtime.HandlerFunc
	}{
		{"POST", "/register", s.handleRegister},
		{"POST", "/login", s.handleLogin},
		{"POST", "/reset-password", s.handleResetPassword},
		{"GET", "/profile", s.authorized(s.handleProfile)},
		{"GET", "/events", s.authorized(s.handleListEvents)},
		{"GET", "/events/day", s.authorized(s.handleEventsForDay)},
		{"POST", "/events/add", s.authorized(s.handleAddEvent)},
		{"PUT", "/events/{id}", s.authorized(s.handleUpdateEvent)},
		{"DELETE", "/events/{id}", s.authorized(s.handleRemoveEvent)},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.path, r.handler); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", r.method, r.path, err)
		}
	}
	return nil
}

func getIP(req *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}

	if parsed := net.ParseIP(ip); parsed == nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}
	return ip, nil
}
