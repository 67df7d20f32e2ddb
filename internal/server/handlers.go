// Package server exposes the tracker over plain JSON HTTP. Handlers stay
// thin: decode, delegate to a service, encode.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"mission-tracker/internal/domain"
	"mission-tracker/internal/intel"
	"mission-tracker/internal/service"
)

type Server struct {
	dashboard *service.DashboardService
	roster    *service.RosterService
	admin     *service.AdminService
	intel     *intel.Processor
	logger    zerolog.Logger
}

func New(dashboard *service.DashboardService, roster *service.RosterService, admin *service.AdminService, intel *intel.Processor, logger zerolog.Logger) *Server {
	return &Server{
		dashboard: dashboard,
		roster:    roster,
		admin:     admin,
		intel:     intel,
		logger:    logger,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/missions", s.handleMissions)
	mux.HandleFunc("GET /api/missions/lookup", s.handleMissionLookup)
	mux.HandleFunc("POST /api/metadata", s.handleSaveMetadata)
	mux.HandleFunc("GET /api/operators", s.handleOperators)
	mux.HandleFunc("GET /api/operators/search", s.handleOperatorSearch)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("GET /api/deleted-users", s.handleDeletedUsers)
	mux.HandleFunc("POST /api/deleted-users", s.handleDeleteUser)
	mux.HandleFunc("POST /api/intel", s.handleIntel)
	mux.HandleFunc("POST /api/medals", s.handleGrantMedal)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Snapshot(r.Context())
	if err != nil {
		s.error(w, http.StatusBadGateway, err)
		return
	}
	s.json(w, http.StatusOK, snap)
}

// handleMissions returns canonical missions, newest first, optionally
// filtered by a case-insensitive substring on the clean name.
func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Snapshot(r.Context())
	if err != nil {
		s.error(w, http.StatusBadGateway, err)
		return
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	missions := make([]domain.CanonicalMission, 0, len(snap.Missions))
	for i := len(snap.Missions) - 1; i >= 0; i-- {
		m := snap.Missions[i]
		if q != "" && !strings.Contains(strings.ToLower(m.CleanName), q) {
			continue
		}
		missions = append(missions, m)
	}
	s.json(w, http.StatusOK, missions)
}

func (s *Server) handleMissionLookup(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.error(w, http.StatusBadRequest, errMissingParam("name"))
		return
	}

	frag, key, ok, err := s.admin.LookupFragment(r.Context(), name)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		s.json(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	s.json(w, http.StatusOK, map[string]any{"found": true, "missionId": key, "metadata": frag})
}

type saveMetadataRequest struct {
	MissionName string                  `json:"missionName"`
	Data        domain.MetadataFragment `json:"data"`
}

func (s *Server) handleSaveMetadata(w http.ResponseWriter, r *http.Request) {
	var req saveMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}

	stored, err := s.admin.SaveFragment(r.Context(), req.MissionName, req.Data, adminName(r))
	if err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"success": true, "mission": strings.TrimSpace(req.MissionName), "metadata": stored})
}

func (s *Server) handleOperators(w http.ResponseWriter, r *http.Request) {
	ops, err := s.roster.Operators(r.Context())
	if err != nil {
		s.error(w, http.StatusBadGateway, err)
		return
	}
	s.json(w, http.StatusOK, ops)
}

func (s *Server) handleOperatorSearch(w http.ResponseWriter, r *http.Request) {
	ops, err := s.roster.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.error(w, http.StatusBadGateway, err)
		return
	}
	s.json(w, http.StatusOK, ops)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.admin.Logs(r.Context())
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, logs)
}

func (s *Server) handleDeletedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.DeletedUsers(r.Context())
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, users)
}

type deleteUserRequest struct {
	Name    string `json:"name"`
	Restore bool   `json:"restore"`
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}

	var err error
	if req.Restore {
		err = s.admin.RestoreUser(r.Context(), req.Name, adminName(r))
	} else {
		err = s.admin.DeleteUser(r.Context(), req.Name, adminName(r))
	}
	if err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"ok": true})
}

type grantMedalRequest struct {
	MemberID string `json:"memberId"`
	AwardID  string `json:"awardId"`
}

func (s *Server) handleGrantMedal(w http.ResponseWriter, r *http.Request) {
	var req grantMedalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}

	if err := s.admin.GrantMedal(r.Context(), req.MemberID, req.AwardID, adminName(r)); err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"ok": true})
}

type intelRequest struct {
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
}

func (s *Server) handleIntel(w http.ResponseWriter, r *http.Request) {
	var req intelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, err)
		return
	}
	if req.MessageID == "" || req.Text == "" {
		s.error(w, http.StatusBadRequest, errMissingParam("messageId, text"))
		return
	}

	result, err := s.intel.Process(r.Context(), req.MessageID, req.Text)
	if err != nil {
		s.error(w, http.StatusBadGateway, err)
		return
	}
	s.json(w, http.StatusOK, result)
}

func (s *Server) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) error(w http.ResponseWriter, status int, err error) {
	s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	s.json(w, status, map[string]string{"error": err.Error()})
}

// adminName identifies the acting admin for the audit trail. Auth itself
// lives at the reverse proxy.
func adminName(r *http.Request) string {
	if name := r.Header.Get("X-Admin-Name"); name != "" {
		return name
	}
	return "Unknown"
}

type errMissingParam string

func (e errMissingParam) Error() string { return "missing required parameter: " + string(e) }
