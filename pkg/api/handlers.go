package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/embedis/pkg/archive"
	"github.com/ssargent/embedis/pkg/settings"
	"github.com/ssargent/embedis/pkg/store"
)

// Server holds the API server state
type Server struct {
	settings  ISettingsStore
	snapshots ISnapshotStore
	config    ServerConfig
	metrics   *Metrics
	logger    *slog.Logger
}

// NewServer creates a new API server
func NewServer(deps Dependencies, config ServerConfig, metrics *Metrics) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		settings:  deps.Settings,
		snapshots: deps.Snapshots,
		config:    config.withDefaults(),
		metrics:   metrics,
		logger:    logger,
	}
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleGetSettings returns every stored pair with the app metadata
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	exported := s.settings.Export()
	s.record("export", start, nil)
	sendSuccess(w, exported)
}

// handleRestoreSettings applies a JSON backup
func (s *Server) handleRestoreSettings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	err = s.settings.Restore(body)
	s.record("restore", start, err)
	if err != nil {
		var (
			syntaxErr *json.SyntaxError
			typeErr   *json.UnmarshalTypeError
		)
		switch {
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, settings.ErrWrongApp):
			sendError(w, err.Error(), http.StatusBadRequest)
		default:
			sendStoreError(w, "Failed to restore settings", err)
		}
		return
	}

	s.refreshStats()
	sendSuccess(w, map[string]string{"message": "Settings restored successfully"})
}

// handleGetSetting returns a single value, or its registered default
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, ok := settingKey(w, r)
	if !ok {
		return
	}

	value, found := s.settings.Get(key)
	s.record("get", start, nil)
	if found {
		sendSuccess(w, SettingResponse{Key: key, Value: value})
		return
	}

	if value, found := s.settings.Query(key); found {
		sendSuccess(w, SettingResponse{Key: key, Value: value, Default: true})
		return
	}
	sendError(w, "Key not found", http.StatusNotFound)
}

// handlePutSetting stores the raw request body as the value of key
func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, ok := settingKey(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	err = s.settings.Set(key, string(body))
	s.record("set", start, err)
	if err != nil {
		sendStoreError(w, "Failed to set key", err)
		return
	}

	s.refreshStats()
	sendSuccess(w, map[string]string{"message": "Key stored successfully"})
}

// handleDeleteSetting removes key
func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, ok := settingKey(w, r)
	if !ok {
		return
	}

	removed, err := s.settings.Delete(key)
	s.record("delete", start, err)
	if err != nil {
		sendStoreError(w, "Failed to delete key", err)
		return
	}
	if removed == 0 {
		sendError(w, "Key not found", http.StatusNotFound)
		return
	}

	s.refreshStats()
	sendSuccess(w, map[string]string{"message": "Key deleted successfully"})
}

// handleStats returns region usage
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.settings.Stats()
	if s.metrics != nil {
		s.metrics.UpdateStoreStats(stats)
	}
	sendSuccess(w, stats)
}

// handleSave pushes pending changes to storage
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := s.settings.Save()
	s.record("save", start, err)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to save settings: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]string{"message": "Settings saved successfully"})
}

// handleListSnapshots lists archived snapshots, oldest first
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireSnapshots(w) {
		return
	}

	infos, err := s.snapshots.ListSnapshots()
	s.recordSnapshot("list", err)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list snapshots: %v", err), http.StatusInternalServerError)
		return
	}
	if infos == nil {
		infos = []archive.Info{}
	}
	sendSuccess(w, infos)
}

// handleCreateSnapshot archives the current image
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireSnapshots(w) {
		return
	}

	var req SnapshotRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			sendError(w, "Invalid JSON request", http.StatusBadRequest)
			return
		}
	}

	info, err := s.snapshots.CreateSnapshot(req.Label)
	s.recordSnapshot("create", err)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to create snapshot: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, info)
}

// handleRestoreSnapshot writes an archived image back
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireSnapshots(w) {
		return
	}

	id := chi.URLParam(r, "id")
	err := s.snapshots.RestoreSnapshot(id)
	s.recordSnapshot("restore", err)
	if err != nil {
		sendSnapshotError(w, "Failed to restore snapshot", err)
		return
	}

	s.refreshStats()
	sendSuccess(w, map[string]string{"message": "Snapshot restored successfully"})
}

// handleDeleteSnapshot removes an archived snapshot
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireSnapshots(w) {
		return
	}

	id := chi.URLParam(r, "id")
	err := s.snapshots.DeleteSnapshot(id)
	s.recordSnapshot("delete", err)
	if err != nil {
		sendSnapshotError(w, "Failed to delete snapshot", err)
		return
	}
	sendSuccess(w, map[string]string{"message": "Snapshot deleted successfully"})
}

func (s *Server) requireSnapshots(w http.ResponseWriter) bool {
	if s.snapshots == nil {
		sendError(w, "Snapshot archive is not configured", http.StatusNotFound)
		return false
	}
	return true
}

// startMetricsUpdater periodically updates region gauges until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(s.config.MetricsInterval)
	defer ticker.Stop()

	s.refreshStats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshStats()
		}
	}
}

func (s *Server) refreshStats() {
	if s.metrics != nil {
		s.metrics.UpdateStoreStats(s.settings.Stats())
	}
}

func (s *Server) record(operation string, start time.Time, err error) {
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "api: store operation failed",
			slog.String("operation", operation), slog.String("error", err.Error()))
	}
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(operation, err == nil, time.Since(start))
	}
}

func (s *Server) recordSnapshot(operation string, err error) {
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "api: snapshot operation failed",
			slog.String("operation", operation), slog.String("error", err.Error()))
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshotOperation(operation, err == nil)
	}
}

// settingKey extracts and unescapes the {key} parameter
func settingKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		sendError(w, "Invalid key encoding", http.StatusBadRequest)
		return "", false
	}
	if key == "" {
		sendError(w, "Key is required", http.StatusBadRequest)
		return "", false
	}
	return key, true
}

func sendStoreError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNoSpace):
		status = http.StatusInsufficientStorage
	case errors.Is(err, store.ErrInvalidKey), errors.Is(err, store.ErrValueTooLarge), errors.Is(err, settings.ErrReservedKey):
		status = http.StatusBadRequest
	}
	sendError(w, fmt.Sprintf("%s: %v", message, err), status)
}

func sendSnapshotError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, archive.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, archive.ErrChecksum):
		status = http.StatusConflict
	}
	sendError(w, fmt.Sprintf("%s: %v", message, err), status)
}
