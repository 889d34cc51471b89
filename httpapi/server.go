package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shadowline/mevwatch/store"
)

// Server is the read-only HTTP surface: opportunity listings, /metrics,
// /healthz, and the WebSocket upgrade endpoint (spec §1 scope note: no user
// CRUD/auth here, that is explicitly out of scope).
type Server struct {
	opps    *store.OpportunityRepo
	chainID int64
	ws      *WSBroadcaster
	httpSrv *http.Server
}

func NewServer(addr string, opps *store.OpportunityRepo, chainID int64, ws *WSBroadcaster) *Server {
	s := &Server{opps: opps, chainID: chainID, ws: ws}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/opportunities", s.handleListOpportunities).Methods(http.MethodGet)
	r.HandleFunc("/opportunities/{txHash}", s.handleGetOpportunity).Methods(http.MethodGet)
	if ws != nil {
		r.Handle("/ws", ws)
	}

	s.httpSrv = &http.Server{Addr: addr, Handler: r}
	return s
}

// ListenAndServe blocks until the server stops or an error occurs.
func (s *Server) ListenAndServe() error {
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the listener (spec §5 cancellation).
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	opps, err := s.opps.ListDetected(r.Context(), s.chainID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, opps)
}

func (s *Server) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	txHash := mux.Vars(r)["txHash"]
	opp, err := s.opps.Get(r.Context(), s.chainID, txHash)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if opp == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, opp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", "err", err)
	}
}
