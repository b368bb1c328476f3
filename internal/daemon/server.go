package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"kai/internal/config"
	"kai/internal/logging"
	"kai/internal/outbox"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Agent.Bind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api"),
		daemon: d,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/status", srv.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/queue", srv.handleQueue).Methods(http.MethodGet)
	router.HandleFunc("/api/queue", srv.handleClearQueue).Methods(http.MethodDelete)
	router.HandleFunc("/api/queue/uploads/{id}/retry", srv.handleRetryUpload).Methods(http.MethodPost)
	router.HandleFunc("/api/drain", srv.handleDrain).Methods(http.MethodPost)

	srv.server = &http.Server{
		Handler:           authMiddleware(strings.TrimSpace(cfg.Agent.APIToken), router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// addr returns the bound address, useful when bind used port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.daemon.store.Counts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := Status{
		Running:       s.daemon.running.Load(),
		Authenticated: s.daemon.manager.Authenticated(),
		Queue:         counts,
		LastDrain:     s.daemon.manager.LastResult(),
		QueueDBPath:   s.daemon.store.Path(),
		LockFilePath:  s.daemon.lockPath,
	}
	s.writeJSON(w, http.StatusOK, status)
}

type queueView struct {
	Messages []*outbox.Message `json:"messages"`
	Uploads  []*outbox.Upload  `json:"uploads"`
	Actions  []*outbox.Action  `json:"actions"`
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	messages, err := s.daemon.store.Messages(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	uploads, err := s.daemon.store.Uploads(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	actions, err := s.daemon.store.Actions(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	view := queueView{Messages: messages, Uploads: uploads, Actions: actions}
	if view.Messages == nil {
		view.Messages = []*outbox.Message{}
	}
	if view.Uploads == nil {
		view.Uploads = []*outbox.Upload{}
	}
	if view.Actions == nil {
		view.Actions = []*outbox.Action{}
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *apiServer) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.store.Clear(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *apiServer) handleRetryUpload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.daemon.manager.RetryUpload(r.Context(), id)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "retrying", "id": id})
	case errors.Is(err, outbox.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	default:
		s.writeError(w, http.StatusConflict, err)
	}
}

func (s *apiServer) handleDrain(w http.ResponseWriter, r *http.Request) {
	result, err := s.daemon.manager.Drain(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing api response failed", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
