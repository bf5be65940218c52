package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/wmjtyd/libstock/pkg/data"
	"github.com/wmjtyd/libstock/pkg/data/fields"
	"github.com/wmjtyd/libstock/pkg/metrics"
	"github.com/wmjtyd/libstock/pkg/storage"
)

// maxRecordBody bounds POST bodies; the largest record is well below it.
const maxRecordBody = 1 << 20

const defaultRecordsLimit = 1000

// RecordSource is the read side of the record store.
type RecordSource interface {
	Range(kind data.Kind, symbol uint16, from, to uint64, fn func(storage.Key, []byte) error) error
}

type Config struct {
	// Store may be nil; the records endpoint then answers 503.
	Store          RecordSource
	Logger         *zap.SugaredLogger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// Server serves record decoding, stored records and the live record feed.
type Server struct {
	store   RecordSource
	router  *mux.Router
	hub     *Hub
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	origins []string
}

func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		store:   cfg.Store,
		router:  mux.NewRouter(),
		hub:     NewHub(log),
		log:     log,
		metrics: cfg.Metrics,
		origins: cfg.AllowedOrigins,
	}
	s.setupRoutes(gatherer)
	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/kinds", s.handleKinds).Methods("GET")
	api.HandleFunc("/decode", s.handleDecode).Methods("POST")
	api.HandleFunc("/decode/{kind}", s.handleDecode).Methods("POST")
	api.HandleFunc("/records/{kind}/{pair}", s.handleRecords).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
}

// Handler is the router wrapped in CORS.
func (s *Server) Handler() http.Handler {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:3001"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.hub.Run()
	defer s.hub.Stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.log.Infow("api_started", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// Hub exposes the websocket hub, e.g. to run it under httptest.
func (s *Server) Hub() *Hub { return s.hub }

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	kinds := data.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	respondJSON(w, KindsResponse{Kinds: names})
}

// handleDecode decodes the raw record in the body. Without a kind in the
// path the kind is read from the header.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	kind := data.KindOf(raw)
	if name, ok := mux.Vars(r)["kind"]; ok {
		if kind, err = data.ParseKind(name); err != nil {
			respondError(w, http.StatusNotFound, "unknown kind", err.Error())
			return
		}
	}

	msg, err := data.DecodeAny(kind, raw)
	if err != nil {
		s.metrics.CodecError(kind.String(), "decode")
		respondError(w, http.StatusUnprocessableEntity, "decode failed", err.Error())
		return
	}
	s.metrics.Decoded(kind.String())
	respondJSON(w, DecodeResponse{Kind: kind.String(), Size: len(raw), Message: msg})
}

// handleRecords answers /records/{kind}/{pair}?from=&to=&limit=. The pair is
// written with a dash, e.g. BTC-USDT.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "record store disabled", "")
		return
	}

	vars := mux.Vars(r)
	kind, err := data.ParseKind(vars["kind"])
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown kind", err.Error())
		return
	}
	pair := strings.ReplaceAll(vars["pair"], "-", "/")
	sp := fields.SymbolPairFromPair(pair)
	if sp.Symbol == 0 {
		respondError(w, http.StatusNotFound, "unknown pair", pair)
		return
	}

	q := r.URL.Query()
	from, err := queryUint(q.Get("from"), 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid from", err.Error())
		return
	}
	to, err := queryUint(q.Get("to"), 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid to", err.Error())
		return
	}
	limit, err := queryUint(q.Get("limit"), defaultRecordsLimit)
	if err != nil || limit == 0 {
		respondError(w, http.StatusBadRequest, "invalid limit", q.Get("limit"))
		return
	}

	records := make([]any, 0)
	errLimit := errors.New("limit reached")
	err = s.store.Range(kind, sp.Symbol, from, to, func(_ storage.Key, raw []byte) error {
		if uint64(len(records)) >= limit {
			return errLimit
		}
		msg, err := data.DecodeAny(kind, raw)
		if err != nil {
			s.metrics.CodecError(kind.String(), "decode")
			s.log.Warnw("stored_record_undecodable", "kind", kind.String(), "pair", pair, "err", err)
			return nil
		}
		records = append(records, msg)
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		respondError(w, http.StatusInternalServerError, "store scan failed", err.Error())
		return
	}

	respondJSON(w, RecordsResponse{Kind: kind.String(), Pair: pair, Count: len(records), Records: records})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{Status: "ok", Store: s.store != nil})
}

// ==============================
// Broadcast Methods (called from the recorder)
// ==============================

// Channel names the websocket channel of a record, e.g. "bbo:BTC/USDT".
func Channel(kind data.Kind, pair string) string { return kind.String() + ":" + pair }

// BroadcastRecord sends a decoded message to subscribers of its channel.
func (s *Server) BroadcastRecord(kind data.Kind, pair string, msg any) {
	channel := Channel(kind, pair)
	s.hub.BroadcastToChannel(channel, WSRecord{
		Type:    "record",
		Channel: channel,
		Kind:    kind.String(),
		Message: msg,
	})
}

// ==============================
// Helper Functions
// ==============================

func queryUint(v string, def uint64) (uint64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
