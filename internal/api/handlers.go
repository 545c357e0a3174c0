package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketwatch/internal/domain"
	"marketwatch/internal/storage"
)

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	spec := domain.ParseSortSpec(r.URL.Query().Get("sort_by"), r.URL.Query().Get("order"))

	listings, err := s.store.Listings(r.Context(), spec)
	if err != nil {
		s.logger.Error("failed to list listings", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve listings")
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	s.respondWithJSON(w, http.StatusOK, listings)
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.Keywords(r.Context())
	if err != nil {
		s.logger.Error("failed to list keywords", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve keywords")
		return
	}
	if keywords == nil {
		keywords = []string{}
	}
	s.respondWithJSON(w, http.StatusOK, keywords)
}

func (s *Server) handleAddKeyword(w http.ResponseWriter, r *http.Request) {
	var req keywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	keyword := strings.TrimSpace(req.Keyword)
	if err := s.store.AddKeyword(r.Context(), keyword); err != nil {
		if errors.Is(err, storage.ErrEmptyKeyword) {
			s.respondWithError(w, http.StatusBadRequest, "Keyword cannot be empty")
			return
		}
		s.logger.Error("failed to add keyword", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not store keyword")
		return
	}

	s.respondWithJSON(w, http.StatusCreated, map[string]string{"status": "success", "keyword": keyword})
}

func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	var req keywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existed, err := s.store.DeleteKeyword(r.Context(), req.Keyword)
	if err != nil {
		s.logger.Error("failed to delete keyword", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not delete keyword")
		return
	}
	if !existed {
		s.respondWithError(w, http.StatusNotFound, "Keyword not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleTriggerScrape(w http.ResponseWriter, r *http.Request) {
	// runs detached; overlap with a timer-triggered cycle is safe
	go s.runner.RunCycle(context.Background())
	s.respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "Scraping job triggered"})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)
	healthy := true

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			healthStatus["postgres"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for postgres", zap.Error(err))
		} else {
			healthStatus["postgres"] = "healthy"
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			healthStatus["redis"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for redis", zap.Error(err))
		} else {
			healthStatus["redis"] = "healthy"
		}
	}

	if !healthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
