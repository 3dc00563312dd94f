package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"tradeconsole/src/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is a localhost tool; cross-origin reads are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter builds the dashboard HTTP surface. The server only reads the
// state document and only writes the control document; the console owns the
// state side.
func NewRouter(config *Config) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write failed")
		}
	})

	r.Get("/api/state", func(w http.ResponseWriter, _ *http.Request) {
		state := ReadState(config.StateFile)
		if state == nil {
			http.Error(w, `{"error":"no session"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, state)
	})

	r.Get("/api/controls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, ReadControls(config.ControlsFile))
	})

	r.Post("/api/controls", func(w http.ResponseWriter, req *http.Request) {
		var controls map[string]model.SymbolControls
		if err := json.NewDecoder(req.Body).Decode(&controls); err != nil {
			http.Error(w, "invalid controls payload", http.StatusBadRequest)
			return
		}
		if err := WriteControls(config.ControlsFile, controls); err != nil {
			logger.WithError(err).Error("control document write failed")
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, controls)
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}
		go pushState(conn, config)
	})

	return r
}

// pushState streams the state document to one websocket client until the
// write fails or the client goes away.
func pushState(conn *websocket.Conn, config *Config) {
	defer conn.Close()

	ticker := time.NewTicker(config.PushInterval)
	defer ticker.Stop()

	for range ticker.C {
		state := ReadState(config.StateFile)
		if state == nil {
			state = &State{}
		}
		if err := conn.WriteJSON(state); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("response encode failed")
	}
}

// StartServer runs the dashboard until SIGINT/SIGTERM, then shuts down
// gracefully.
func StartServer(config *Config) {
	addr := ":" + config.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(config),
	}

	go func() {
		logger.Infof("Dashboard listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Dashboard server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
