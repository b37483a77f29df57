package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// ApiServer exposes the admin surface: query CRUD, manual execution and
// a recent-tweets view. Scheduled runs do not go through here.
type ApiServer struct {
	dbService           *DatabaseService
	executor            *QueryExecutorService
	executionLogService *ExecutionLogService
	listenAddr          string
	mux                 *http.ServeMux
	httpServer          *http.Server
}

func NewApiServer(dbService *DatabaseService, executor *QueryExecutorService, executionLogService *ExecutionLogService, listenAddr string) *ApiServer {
	s := &ApiServer{
		dbService:           dbService,
		executor:            executor,
		executionLogService: executionLogService,
		listenAddr:          listenAddr,
		mux:                 http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *ApiServer) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /queries", s.handleCreateQuery)
	s.mux.HandleFunc("GET /queries", s.handleListQueries)
	s.mux.HandleFunc("GET /queries/{id}", s.handleGetQuery)
	s.mux.HandleFunc("PATCH /queries/{id}", s.handleUpdateQuery)
	s.mux.HandleFunc("DELETE /queries/{id}", s.handleDeleteQuery)
	s.mux.HandleFunc("POST /execute", s.handleExecute)
	s.mux.HandleFunc("GET /tweets/recent", s.handleRecentTweets)
	s.mux.HandleFunc("GET /executions/recent", s.handleRecentExecutions)
}

func (s *ApiServer) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.mux,
	}
	log.Printf("HTTP API listening on %s", s.listenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *ApiServer) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *ApiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type queryRequest struct {
	Name             *string           `json:"name"`
	SearchText       *string           `json:"search_text"`
	Filters          map[string]string `json:"filters"`
	ScheduleInterval *string           `json:"schedule_interval"`
	IsActive         *bool             `json:"is_active"`
}

func (s *ApiServer) handleCreateQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == nil || *req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.SearchText == nil || *req.SearchText == "" {
		http.Error(w, "search_text required", http.StatusBadRequest)
		return
	}

	query := QueryModel{
		Name:       *req.Name,
		SearchText: *req.SearchText,
		Filters:    req.Filters,
		IsActive:   true,
	}
	if req.ScheduleInterval != nil {
		query.ScheduleInterval = *req.ScheduleInterval
	}
	if req.IsActive != nil {
		query.IsActive = *req.IsActive
	}

	saved, err := s.dbService.SaveQuery(query)
	if err != nil {
		http.Error(w, "save error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *ApiServer) handleListQueries(w http.ResponseWriter, r *http.Request) {
	queries, err := s.dbService.ListQueries()
	if err != nil {
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

func (s *ApiServer) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	query, err := s.dbService.GetQuery(id)
	if err != nil {
		if IsNotFound(err) {
			http.Error(w, "query not found", http.StatusNotFound)
			return
		}
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, query)
}

func (s *ApiServer) handleUpdateQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	query, err := s.dbService.GetQuery(id)
	if err != nil {
		if IsNotFound(err) {
			http.Error(w, "query not found", http.StatusNotFound)
			return
		}
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name != nil {
		query.Name = *req.Name
	}
	if req.SearchText != nil {
		query.SearchText = *req.SearchText
	}
	if req.Filters != nil {
		query.Filters = req.Filters
	}
	if req.ScheduleInterval != nil {
		query.ScheduleInterval = *req.ScheduleInterval
	}
	if req.IsActive != nil {
		query.IsActive = *req.IsActive
	}

	saved, err := s.dbService.SaveQuery(*query)
	if err != nil {
		http.Error(w, "save error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *ApiServer) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.dbService.DeleteQuery(id)
	if err != nil {
		http.Error(w, "delete error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "query not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type executeRequest struct {
	QueryID            uint  `json:"query_id"`
	Limit              int   `json:"limit"`
	IncludeMedia       *bool `json:"include_media"`
	UpdateUserProfiles *bool `json:"update_user_profiles"`
}

func (s *ApiServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.QueryID == 0 {
		http.Error(w, "query_id required", http.StatusBadRequest)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = DEFAULT_SEARCH_LIMIT
	}
	if limit < MIN_SEARCH_LIMIT {
		limit = MIN_SEARCH_LIMIT
	}
	if limit > MAX_SEARCH_LIMIT {
		limit = MAX_SEARCH_LIMIT
	}

	includeMedia := true
	if req.IncludeMedia != nil {
		includeMedia = *req.IncludeMedia
	}
	updateUserProfiles := true
	if req.UpdateUserProfiles != nil {
		updateUserProfiles = *req.UpdateUserProfiles
	}

	summary, err := s.executor.ExecuteQuery(req.QueryID, limit, includeMedia, updateUserProfiles)
	if err != nil {
		http.Error(w, "execution error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *ApiServer) handleRecentTweets(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	tweets, err := s.dbService.GetRecentTweets(limit)
	if err != nil {
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tweets": tweets})
}

func (s *ApiServer) handleRecentExecutions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	executions, err := s.executionLogService.GetRecentExecutions(limit)
	if err != nil {
		http.Error(w, "query error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"executions": executions})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		http.Error(w, "invalid query id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
