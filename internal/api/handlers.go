package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/event"
	"github.com/sitewatch-io/sitewatch/internal/monitor"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// DeviceRequest is the body for POST /api/v1/devices.
type DeviceRequest struct {
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Vendor        string          `json:"vendor,omitempty"`
	DeviceType    string          `json:"device_type,omitempty"`
	SNMPCommunity string          `json:"snmp_community,omitempty"`
	SNMPPort      int             `json:"snmp_port,omitempty"`
	Metadata      models.Metadata `json:"metadata,omitempty"`
}

// CameraRequest is the body for POST /api/v1/cameras.
type CameraRequest struct {
	Name     string          `json:"name"`
	Address  string          `json:"address"`
	RTSPURL  string          `json:"rtsp_url,omitempty"`
	Username string          `json:"username,omitempty"`
	Password string          `json:"password,omitempty"`
	Location string          `json:"location,omitempty"`
	Metadata models.Metadata `json:"metadata,omitempty"`
}

// StatusResponse summarizes fleet state for GET /api/v1/status.
type StatusResponse struct {
	Devices map[models.Status]int `json:"devices"`
	Cameras map[models.Status]int `json:"cameras"`
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.repo.ListDevices(r.Context())
	if err != nil {
		s.logger.Error("list devices", zap.Error(err))
		InternalError(w, "failed to list devices", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		return
	}
	if req.Name == "" || req.Address == "" {
		BadRequest(w, "name and address are required", r.URL.Path)
		return
	}

	now := time.Now().UTC()
	d := &models.Device{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Address:       req.Address,
		Vendor:        req.Vendor,
		DeviceType:    req.DeviceType,
		SNMPCommunity: req.SNMPCommunity,
		SNMPPort:      req.SNMPPort,
		Status:        models.StatusUnknown,
		Metadata:      req.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertDevice(r.Context(), d); err != nil {
		s.logger.Error("create device", zap.Error(err))
		InternalError(w, "failed to create device", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.repo.GetDevice(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("get device", zap.Error(err))
		InternalError(w, "failed to load device", r.URL.Path)
		return
	}
	if d == nil {
		NotFound(w, "device not found", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	ok, err := s.repo.DeleteDevice(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("delete device", zap.Error(err))
		InternalError(w, "failed to delete device", r.URL.Path)
		return
	}
	if !ok {
		NotFound(w, "device not found", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePollDevice(w http.ResponseWriter, r *http.Request) {
	out, err := s.poller.PollDevice(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			NotFound(w, "device not found", r.URL.Path)
			return
		}
		s.logger.Error("poll device", zap.Error(err))
		InternalError(w, "poll failed", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCameras(w http.ResponseWriter, r *http.Request) {
	cameras, err := s.repo.ListCameras(r.Context())
	if err != nil {
		s.logger.Error("list cameras", zap.Error(err))
		InternalError(w, "failed to list cameras", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, cameras)
}

func (s *Server) handleCreateCamera(w http.ResponseWriter, r *http.Request) {
	var req CameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		return
	}
	if req.Name == "" || req.Address == "" {
		BadRequest(w, "name and address are required", r.URL.Path)
		return
	}

	now := time.Now().UTC()
	c := &models.Camera{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		RTSPURL:   req.RTSPURL,
		Username:  req.Username,
		Password:  req.Password,
		Location:  req.Location,
		Status:    models.StatusUnknown,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertCamera(r.Context(), c); err != nil {
		s.logger.Error("create camera", zap.Error(err))
		InternalError(w, "failed to create camera", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	c, err := s.repo.GetCamera(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("get camera", zap.Error(err))
		InternalError(w, "failed to load camera", r.URL.Path)
		return
	}
	if c == nil {
		NotFound(w, "camera not found", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCamera(w http.ResponseWriter, r *http.Request) {
	ok, err := s.repo.DeleteCamera(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("delete camera", zap.Error(err))
		InternalError(w, "failed to delete camera", r.URL.Path)
		return
	}
	if !ok {
		NotFound(w, "camera not found", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePollCamera(w http.ResponseWriter, r *http.Request) {
	out, err := s.poller.PollCamera(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			NotFound(w, "camera not found", r.URL.Path)
			return
		}
		s.logger.Error("poll camera", zap.Error(err))
		InternalError(w, "poll failed", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePollAll kicks off one full cycle of each kind. The cycles run
// on the monitor's lifecycle, so they outlive the response but not a
// shutdown.
func (s *Server) handlePollAll(w http.ResponseWriter, _ *http.Request) {
	s.poller.TriggerAll()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// AlertRequest is the body for POST /api/v1/alerts.
type AlertRequest struct {
	EntityID   string            `json:"entity_id,omitempty"`
	EntityKind models.EntityKind `json:"entity_kind,omitempty"`
	Severity   models.Severity   `json:"severity"`
	Message    string            `json:"message"`
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		return
	}
	if req.Message == "" {
		BadRequest(w, "message is required", r.URL.Path)
		return
	}
	if !req.Severity.Valid() {
		BadRequest(w, "severity must be one of critical, high, medium, low, info", r.URL.Path)
		return
	}

	a := &models.Alert{
		ID:         uuid.NewString(),
		EntityID:   req.EntityID,
		EntityKind: req.EntityKind,
		Severity:   req.Severity,
		Message:    req.Message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.InsertAlert(r.Context(), a); err != nil {
		s.logger.Error("create alert", zap.Error(err))
		InternalError(w, "failed to create alert", r.URL.Path)
		return
	}

	// Notification delivery happens through the bus subscription, the
	// same path scheduler alerts take.
	s.bus.PublishAsync(context.WithoutCancel(r.Context()), event.Event{
		Topic:     event.TopicAlertCreated,
		Source:    "api",
		Timestamp: a.CreatedAt,
		Payload:   a,
	})

	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	unackedOnly := r.URL.Query().Get("unacked") == "true"

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			BadRequest(w, "limit must be a positive integer", r.URL.Path)
			return
		}
		limit = n
	}

	alerts, err := s.repo.ListAlerts(r.Context(), unackedOnly, limit)
	if err != nil {
		s.logger.Error("list alerts", zap.Error(err))
		InternalError(w, "failed to list alerts", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAckAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	acked, err := s.repo.AcknowledgeAlert(r.Context(), id, time.Now().UTC())
	if err != nil {
		s.logger.Error("acknowledge alert", zap.Error(err))
		InternalError(w, "failed to acknowledge alert", r.URL.Path)
		return
	}
	if !acked {
		// Either missing or already acknowledged; acking twice is a no-op.
		a, err := s.repo.GetAlert(r.Context(), id)
		if err != nil {
			s.logger.Error("get alert", zap.Error(err))
			InternalError(w, "failed to load alert", r.URL.Path)
			return
		}
		if a == nil {
			NotFound(w, "alert not found", r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	a, err := s.repo.GetAlert(r.Context(), id)
	if err != nil || a == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	ok, err := s.repo.DeleteAlert(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("delete alert", zap.Error(err))
		InternalError(w, "failed to delete alert", r.URL.Path)
		return
	}
	if !ok {
		NotFound(w, "alert not found", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	devices, err := s.repo.CountDevicesByStatus(r.Context())
	if err != nil {
		s.logger.Error("count devices", zap.Error(err))
		InternalError(w, "failed to summarize devices", r.URL.Path)
		return
	}
	cameras, err := s.repo.CountCamerasByStatus(r.Context())
	if err != nil {
		s.logger.Error("count cameras", zap.Error(err))
		InternalError(w, "failed to summarize cameras", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Devices: devices, Cameras: cameras})
}
