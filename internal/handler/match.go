package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/middleware"
	"github.com/aidar/kickoff/internal/service"
)

// MatchHandler обрабатывает эндпоинты матчей
type MatchHandler struct {
	matchService *service.MatchService
}

// NewMatchHandler создает новый MatchHandler
func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// CreateMatchRequest представляет тело запроса для создания матча
type CreateMatchRequest struct {
	FieldName      string    `json:"fieldName"`
	CityName       string    `json:"cityName"`
	StartDateTime  time.Time `json:"startDateTime"`
	MaxPlayers     int       `json:"maxPlayers"`
	CleatsAllowed  bool      `json:"cleatsAllowed"`
	TacklesAllowed bool      `json:"tacklesAllowed"`
}

// Bind реализует render.Binder
func (req *CreateMatchRequest) Bind(*http.Request) error { return nil }

// MatchListResponse представляет список матчей
type MatchListResponse struct {
	Matches []*domain.Match `json:"matches"`
}

// CreateMatch обрабатывает POST /matches
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := render.Bind(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeValidation), "invalid request body")
		return
	}

	// Организатором всегда становится текущий пользователь
	match, err := h.matchService.CreateMatch(r.Context(), service.CreateMatchInput{
		OrganizerID:    middleware.GetUserIDFromContext(r.Context()),
		FieldName:      req.FieldName,
		CityName:       req.CityName,
		StartDateTime:  req.StartDateTime,
		MaxPlayers:     req.MaxPlayers,
		CleatsAllowed:  req.CleatsAllowed,
		TacklesAllowed: req.TacklesAllowed,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, match)
}

// GetMatch обрабатывает GET /matches/{matchID}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	details, err := h.matchService.GetMatch(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, details)
}

// SearchMatches обрабатывает GET /matches/search?city=...
func (h *MatchHandler) SearchMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.SearchMatchesByCity(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MatchListResponse{Matches: matches})
}

// MyMatches обрабатывает GET /matches/my
func (h *MatchHandler) MyMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListMatchesForUser(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MatchListResponse{Matches: matches})
}

// JoinMatch обрабатывает POST /matches/{matchID}/join
func (h *MatchHandler) JoinMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.matchService.JoinMatch(r.Context(), chi.URLParam(r, "matchID"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, match)
}

// LeaveMatch обрабатывает POST /matches/{matchID}/leave
func (h *MatchHandler) LeaveMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.matchService.LeaveMatch(r.Context(), chi.URLParam(r, "matchID"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, match)
}

// FormTeams обрабатывает POST /matches/{matchID}/teams (только организатор)
func (h *MatchHandler) FormTeams(w http.ResponseWriter, r *http.Request) {
	formation, err := h.matchService.FormTeams(r.Context(), chi.URLParam(r, "matchID"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, formation)
}

// DeleteMatch обрабатывает DELETE /matches/{matchID} (только организатор)
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	err := h.matchService.DeleteMatch(r.Context(), chi.URLParam(r, "matchID"), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondNoContent(w, r)
}
