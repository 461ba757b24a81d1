package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"petrovich.ru/petrovich/pipeline"
	"petrovich.ru/petrovich/rules"
)

const TidHeader = "X-Request-Id"

type Server struct {
	engines  pipeline.EngineProvider
	pipeline pipeline.Pipeline
	config   Config
}

func NewServer(engines pipeline.EngineProvider, ppln pipeline.Pipeline, config Config) *Server {
	return &Server{
		engines:  engines,
		pipeline: ppln,
		config:   config,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/inflect", s.Inflect)
	mux.HandleFunc("/batch", s.Batch)
	mux.HandleFunc("/health", s.Health)
	mux.Handle("/metrics", allowOnly(http.MethodGet, promhttp.Handler()))
	return mux
}

type errorResponse struct {
	Tid   string `json:"tid,omitempty"`
	Error string `json:"error"`
}

type healthResponse struct {
	Status      string         `json:"status"`
	Rules       map[string]int `json:"rules"`
	Skipped     int            `json:"skipped"`
	Fingerprint string         `json:"fingerprint"`
}

func (s *Server) Inflect(w http.ResponseWriter, r *http.Request) {
	tid := requestTid(r)
	logger := makeRequestLogger(r, tid)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(TidHeader, tid)

	if r.Method != http.MethodPost {
		writeError(w, logger, http.StatusMethodNotAllowed, tid, fmt.Errorf("only '%s' method is allowed here", http.MethodPost))
		return
	}

	var entry pipeline.Entry
	if err := s.decode(w, r, &entry); err != nil {
		writeError(w, logger, http.StatusBadRequest, tid, err)
		return
	}

	result, err := pipeline.Inflect(s.engines.Get(), entry)
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, tid, err)
		return
	}
	writeJSON(w, logger, result)
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

func (s *Server) Batch(w http.ResponseWriter, r *http.Request) {
	tid := requestTid(r)
	logger := makeRequestLogger(r, tid)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(TidHeader, tid)

	if r.Method != http.MethodPost {
		writeError(w, logger, http.StatusMethodNotAllowed, tid, fmt.Errorf("only '%s' method is allowed here", http.MethodPost))
		return
	}

	var request pipeline.Request
	if err := s.decode(w, r, &request); err != nil {
		writeError(w, logger, http.StatusBadRequest, tid, err)
		return
	}
	if len(request.Entries) == 0 {
		writeError(w, logger, http.StatusBadRequest, tid, fmt.Errorf("batch has no entries"))
		return
	}
	if s.config.MaxBatchSize > 0 && len(request.Entries) > s.config.MaxBatchSize {
		writeError(w, logger, http.StatusBadRequest, tid,
			fmt.Errorf("batch has %d entries, at most %d are allowed", len(request.Entries), s.config.MaxBatchSize))
		return
	}
	if request.Tid == "" {
		request.Tid = tid
	}

	logger.Info().Int("entries", len(request.Entries)).Msg("Starting pipeline for request from API")
	resp := <-s.pipeline(request)
	_, _ = w.Write([]byte(resp))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	logger := makeRequestLogger(r, "")
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeError(w, logger, http.StatusMethodNotAllowed, "", fmt.Errorf("only '%s' method is allowed here", http.MethodGet))
		return
	}

	table := s.engines.Get().Rules()
	health := healthResponse{
		Status:      "ok",
		Rules:       make(map[string]int, 3),
		Skipped:     len(table.Skipped()),
		Fingerprint: fmt.Sprintf("%016x", table.Fingerprint()),
	}
	for _, role := range rules.Roles() {
		health.Rules[role.Value()] = table.Group(role).Len()
	}
	writeJSON(w, logger, health)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	return nil
}

func requestTid(r *http.Request) string {
	if tid := r.Header.Get(TidHeader); tid != "" {
		return tid
	}
	return uuid.NewString()
}

func allowOnly(method string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			logger := makeRequestLogger(r, "")
			w.Header().Set("Content-Type", "application/json")
			writeError(w, logger, http.StatusMethodNotAllowed, "", fmt.Errorf("only '%s' method is allowed here", method))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, tid string, err error) {
	logger.Err(err).Int("status", status).Msg("Request rejected")
	w.WriteHeader(status)
	writeJSON(w, logger, errorResponse{Tid: tid, Error: err.Error()})
}
