package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/indexer"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/search"
	"github.com/hyperjump/shirabe/internal/storage"
	"github.com/hyperjump/shirabe/pkg/utils"
	"go.uber.org/zap"
)

const msgSearchUnavailable = "search temporarily unavailable"

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := s.normalizer.NormalizeValues(r.URL.Query())
	s.logger.Debug("search request", zap.String("query", q.Encode()))
	page, err := s.engine.Search(r.Context(), q)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, page)
	case errors.Is(err, search.ErrSearchUnavailable):
		// the cause is logged by the engine; clients only see the generic message
		s.respondError(w, http.StatusServiceUnavailable, msgSearchUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "search timed out")
	default:
		// client went away
		s.logger.Debug("search canceled", zap.Error(err))
	}
}

func (s *Server) handleIndexItem(w http.ResponseWriter, r *http.Request) {
	var input models.ContentItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("index item request",
		zap.String("id", input.ID),
		zap.String("type", string(input.Type)),
		zap.String("title", utils.TruncateWords(input.Title, 8)),
	)
	item, err := s.indexer.IndexItem(r.Context(), &input)
	if err != nil {
		if errors.Is(err, indexer.ErrUnknownType) || errors.Is(err, indexer.ErrInvalidItem) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "indexing failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := s.storage.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "content item not found")
			return
		}
		s.logger.Error("get item failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load content item")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete item request", zap.String("id", id))
	if err := s.indexer.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "content item not found")
			return
		}
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "deletion failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// typeStatus is one row of the status payload.
type typeStatus struct {
	Type  models.ContentType `json:"type"`
	Label string             `json:"label"`
	Count int64              `json:"count"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := s.storage.CountItems(ctx)
	if err != nil {
		s.logger.Error("status: count items failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to count items")
		return
	}
	byType, err := s.storage.CountItemsByType(ctx)
	if err != nil {
		s.logger.Error("status: count items by type failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to count items")
		return
	}
	types := make([]typeStatus, 0, len(s.config.Search.ContentTypes))
	for _, ct := range s.config.Search.ContentTypes {
		types = append(types, typeStatus{Type: ct.Name, Label: ct.Label, Count: byType[ct.Name]})
	}
	resp := map[string]interface{}{
		"items":  total,
		"types":  types,
		"config": s.configInfo(),
	}
	if usage, err := storage.ContentDiskUsage(s.config.Storage.DatabasePath, s.config.Storage.BleveIndexPath); err == nil {
		resp["disk_usage_bytes"] = usage.Total()
		resp["disk_usage"] = usage
	} else {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	if s.watch != nil {
		resp["watch_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) configInfo() map[string]interface{} {
	sc := s.config.Search
	return map[string]interface{}{
		"default_page_size": sc.DefaultPageSize,
		"excerpt_length":    sc.ExcerptLength,
		"facet_cache_size":  sc.FacetCacheSize,
		"spell_check":       sc.SpellCheck,
		"database_path":     s.config.Storage.DatabasePath,
		"bleve_index_path":  s.config.Storage.BleveIndexPath,
	}
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.logger.Error("watch add: stat failed", zap.String("path", abs), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to read directory")
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to watch directory")
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to stop watching directory")
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
