// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package webapp serves the demo HTTP API over the catalog database.
package webapp

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/ragstack/ragstack/internal/database"
)

var logger = loggo.GetLogger("ragstack.webapp")

// Server exposes the catalog over HTTP.
type Server struct {
	conn   database.ItemConn
	router *mux.Router
}

// NewServer returns a Server reading items from conn.
func NewServer(conn database.ItemConn) *Server {
	s := &Server{conn: conn, router: mux.NewRouter()}
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/items", s.handleItems).Methods("GET")
	s.router.HandleFunc("/api/items/{id:[0-9]+}", s.handleItem).Methods("GET")
	return s
}

// Router returns the route handler, for mounting or testing.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.router}
	done := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		done <- server.ListenAndServe()
	}()
	select {
	case err := <-done:
		return errors.Trace(err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Trace(server.Shutdown(shutdownCtx))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	items, err := database.AllItems(r.Context(), s.conn)
	if err != nil {
		sendError(w, err)
		return
	}
	if items == nil {
		items = []database.Item{}
	}
	sendJSON(w, http.StatusOK, items)
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	// The route pattern guarantees a numeric id.
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	items, err := database.AllItems(r.Context(), s.conn)
	if err != nil {
		sendError(w, err)
		return
	}
	for _, item := range items {
		if item.ID == id {
			sendJSON(w, http.StatusOK, item)
			return
		}
	}
	sendJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("writing response: %v", err)
	}
}

func sendError(w http.ResponseWriter, err error) {
	logger.Errorf("request failed: %v", err)
	sendJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
