// match/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/stricker-gg/go-services/match/engine"
	"github.com/stricker-gg/go-services/match/service"
	"github.com/stricker-gg/go-services/match/store"
	"github.com/stricker-gg/go-services/shared/api"
	"github.com/stricker-gg/go-services/shared/models"
)

// MatchAPIHandlers holds references to the services that handle business logic.
type MatchAPIHandlers struct {
	MatchService *service.MatchService
}

// NewMatchAPIHandlers is the constructor for the API handlers.
func NewMatchAPIHandlers(ms *service.MatchService) *MatchAPIHandlers {
	return &MatchAPIHandlers{
		MatchService: ms,
	}
}

// --- Request/Response DTOs (Data Transfer Objects) ---

type CreateMatchRequest struct {
	Mode              string            `json:"mode"`
	Format            int               `json:"format"`
	Team1SquadID      string            `json:"team1SquadId"`
	Team1ReferentID   string            `json:"team1ReferentId"`
	Team1ReferentName string            `json:"team1ReferentName"`
	Team2SquadID      string            `json:"team2SquadId"`
	Team2ReferentID   string            `json:"team2ReferentId"`
	Team2ReferentName string            `json:"team2ReferentName"`
	MapPool           []models.MapInfo  `json:"mapPool"`
	FreeMapChoice     bool              `json:"freeMapChoice"`
	TiebreakerMaps    []models.MapInfo  `json:"tiebreakerMaps"`
	IsTestMatch       bool              `json:"isTestMatch"`
}

type MatchSnapshotResponse struct {
	Match *models.Match      `json:"match"`
	View  *service.MatchView `json:"view,omitempty"`
}

type MemberRequest struct {
	MemberID string `json:"memberId"`
}

type HelperRequest struct {
	HelperID string `json:"helperId"`
}

type BanMapRequest struct {
	MapName string `json:"mapName"`
}

type ChooseMapRequest struct {
	MapName string `json:"mapName"`
}

type GameResultRequest struct {
	Order      int `json:"order"`
	Team1Goals int `json:"team1Goals"`
	Team2Goals int `json:"team2Goals"`
}

type GameCodeRequest struct {
	GameCode string `json:"gameCode"`
}

type SubmitResultRequest struct {
	Winner int `json:"winner"`
}

type CancelVoteRequest struct {
	Vote bool `json:"vote"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type MVPVoteRequest struct {
	VotedFor string `json:"votedFor"`
}

type ForceWinnerRequest struct {
	Winner int `json:"winner"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// --- Helpers ---

// actingUser resolves the caller from the identity layer's X-User-ID header.
// Session verification itself happens upstream at the gateway.
func actingUser(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func actingAdmin(r *http.Request) string {
	return r.Header.Get("X-Admin-ID")
}

// writeServiceError maps protocol rejections to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound), errors.Is(err, engine.ErrMemberNotFound):
		api.WriteNotFound(w, err.Error())
	case errors.Is(err, engine.ErrUnauthorized):
		api.WriteForbidden(w, err.Error())
	case errors.Is(err, engine.ErrRateLimited):
		api.WriteError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, engine.ErrInvalidPhase),
		errors.Is(err, engine.ErrAlreadyReported),
		errors.Is(err, engine.ErrAlreadyVoted),
		errors.Is(err, engine.ErrAlreadyBanned),
		errors.Is(err, engine.ErrAlreadyChosen),
		errors.Is(err, engine.ErrRosterFull),
		errors.Is(err, engine.ErrHelperLimitExceeded),
		errors.Is(err, engine.ErrUserUnavailable),
		errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, service.ErrCreationInProgress):
		api.WriteConflict(w, err.Error())
	case errors.Is(err, engine.ErrMapNotInPool),
		errors.Is(err, engine.ErrInvalidScore),
		errors.Is(err, engine.ErrGameNotFound),
		errors.Is(err, engine.ErrInvalidTeam),
		errors.Is(err, engine.ErrInvalidStatus):
		api.WriteBadRequest(w, err.Error())
	default:
		log.Printf("ERROR: %s %s failed: %v", r.Method, r.URL.Path, err)
		api.WriteInternalServerError(w, "Internal error")
	}
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// --- Handler Methods ---

// CreateMatchHandler opens a match from a pairing event.
// POST /matches
func (mah *MatchAPIHandlers) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.CreateMatch(ctx, service.CreateParams{
		Mode:              req.Mode,
		Format:            req.Format,
		Team1SquadID:      req.Team1SquadID,
		Team1ReferentID:   req.Team1ReferentID,
		Team1ReferentName: req.Team1ReferentName,
		Team2SquadID:      req.Team2SquadID,
		Team2ReferentID:   req.Team2ReferentID,
		Team2ReferentName: req.Team2ReferentName,
		MapPool:           req.MapPool,
		FreeMapChoice:     req.FreeMapChoice,
		TiebreakerMaps:    req.TiebreakerMaps,
		IsTestMatch:       req.IsTestMatch,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, m)
}

// GetMatchHandler returns the full match snapshot plus the caller's view.
// GET /matches/{id}
func (mah *MatchAPIHandlers) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]

	ctx, cancel := requestContext(r)
	defer cancel()

	m, view, err := mah.MatchService.GetMatch(ctx, matchID, actingUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, MatchSnapshotResponse{Match: m, View: view})
}

// ListMatchesHandler lists matches by status, squad or user.
// GET /matches
func (mah *MatchAPIHandlers) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.MatchFilter{
		Status:  models.MatchStatus(q.Get("status")),
		SquadID: q.Get("squadId"),
		UserID:  q.Get("userId"),
	}
	if f.Status != "" && !f.Status.IsValid() {
		api.WriteBadRequest(w, "Unknown status filter")
		return
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || limit < 0 {
			api.WriteBadRequest(w, "Invalid limit")
			return
		}
		f.Limit = limit
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	matches, err := mah.MatchService.ListMatches(ctx, f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, matches)
}

// SelectMemberHandler picks a squad member onto the caller's roster.
// POST /matches/{id}/roster/select
func (mah *MatchAPIHandlers) SelectMemberHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MemberID == "" {
		api.WriteBadRequest(w, "memberId is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.SelectMember(ctx, matchID, userID, req.MemberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// DeselectMemberHandler removes a member or helper from the caller's roster.
// POST /matches/{id}/roster/deselect
func (mah *MatchAPIHandlers) DeselectMemberHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MemberID == "" {
		api.WriteBadRequest(w, "memberId is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.DeselectMember(ctx, matchID, userID, req.MemberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// SearchHelpersHandler lists eligible helper candidates.
// GET /matches/{id}/roster/helpers?q=
func (mah *MatchAPIHandlers) SearchHelpersHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	candidates, err := mah.MatchService.SearchHelperCandidates(ctx, matchID, userID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, candidates)
}

// SelectHelperHandler adds the team's single external helper.
// POST /matches/{id}/roster/helper
func (mah *MatchAPIHandlers) SelectHelperHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req HelperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HelperID == "" {
		api.WriteBadRequest(w, "helperId is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.SelectHelper(ctx, matchID, userID, req.HelperID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// BanMapHandler records the caller's map ban.
// POST /matches/{id}/maps/ban
func (mah *MatchAPIHandlers) BanMapHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req BanMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MapName == "" {
		api.WriteBadRequest(w, "mapName is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.BanMap(ctx, matchID, userID, req.MapName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// ChooseMapHandler records the caller team's own map pick in free-choice mode.
// POST /matches/{id}/maps/choose
func (mah *MatchAPIHandlers) ChooseMapHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req ChooseMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MapName == "" {
		api.WriteBadRequest(w, "mapName is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.ChooseMap(ctx, matchID, userID, req.MapName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// RecordGameResultHandler records the final score of one game of the series.
// POST /matches/{id}/maps/game-result
func (mah *MatchAPIHandlers) RecordGameResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req GameResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == 0 {
		api.WriteBadRequest(w, "order is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.RecordGameResult(ctx, matchID, userID, req.Order, req.Team1Goals, req.Team2Goals)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// ResolveTiebreakerHandler settles a 1-1 free-choice series.
// POST /matches/{id}/maps/tiebreaker
func (mah *MatchAPIHandlers) ResolveTiebreakerHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.ResolveTiebreaker(ctx, matchID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// SetGameCodeHandler records the lobby code and starts the match.
// POST /matches/{id}/game-code
func (mah *MatchAPIHandlers) SetGameCodeHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req GameCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameCode == "" {
		api.WriteBadRequest(w, "gameCode is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.SetGameCode(ctx, matchID, userID, req.GameCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// SubmitResultHandler records the caller team's winner report.
// POST /matches/{id}/result
func (mah *MatchAPIHandlers) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.SubmitResult(ctx, matchID, userID, req.Winner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// VoteCancelHandler sets or withdraws the caller team's cancellation vote.
// POST /matches/{id}/cancel-vote
func (mah *MatchAPIHandlers) VoteCancelHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req CancelVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.VoteCancel(ctx, matchID, userID, req.Vote)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// ReportAfkHandler records an AFK escalation.
// POST /matches/{id}/afk-report
func (mah *MatchAPIHandlers) ReportAfkHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.ReportAfk(ctx, matchID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// CallArbitratorHandler records a request for human intervention.
// POST /matches/{id}/arbitrator
func (mah *MatchAPIHandlers) CallArbitratorHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.CallArbitrator(ctx, matchID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// SendChatHandler appends a participant message to the match chat.
// POST /matches/{id}/chat
func (mah *MatchAPIHandlers) SendChatHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		api.WriteBadRequest(w, "message is required")
		return
	}
	if len(req.Message) > 500 {
		api.WriteBadRequest(w, "message exceeds 500 characters")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.SendChat(ctx, matchID, userID, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// VoteMVPHandler records a losing-team member's MVP vote.
// POST /matches/{id}/mvp-vote
func (mah *MatchAPIHandlers) VoteMVPHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	userID := actingUser(r)
	if userID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req MVPVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VotedFor == "" {
		api.WriteBadRequest(w, "votedFor is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.VoteMVP(ctx, matchID, userID, req.VotedFor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// ForceWinnerHandler is the unilateral admin resolution path.
// POST /matches/{id}/admin/force-winner
func (mah *MatchAPIHandlers) ForceWinnerHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	adminID := actingAdmin(r)
	if adminID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-Admin-ID header is required")
		return
	}
	var req ForceWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.ForceWinner(ctx, matchID, adminID, req.Winner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// SetStatusHandler is the unilateral admin status override.
// PATCH /matches/{id}/admin/status
func (mah *MatchAPIHandlers) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	adminID := actingAdmin(r)
	if adminID == "" {
		api.WriteError(w, http.StatusUnauthorized, "X-Admin-ID header is required")
		return
	}
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		api.WriteBadRequest(w, "status is required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	m, err := mah.MatchService.SetStatus(ctx, matchID, adminID, models.MatchStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, m)
}

// HealthzHandler reports liveness.
// GET /healthz
func (mah *MatchAPIHandlers) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes attaches all match endpoints to the router.
func (mah *MatchAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", mah.HealthzHandler).Methods(http.MethodGet)

	router.HandleFunc("/matches", mah.CreateMatchHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches", mah.ListMatchesHandler).Methods(http.MethodGet)
	router.HandleFunc("/matches/{id}", mah.GetMatchHandler).Methods(http.MethodGet)

	router.HandleFunc("/matches/{id}/roster/select", mah.SelectMemberHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/roster/deselect", mah.DeselectMemberHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/roster/helpers", mah.SearchHelpersHandler).Methods(http.MethodGet)
	router.HandleFunc("/matches/{id}/roster/helper", mah.SelectHelperHandler).Methods(http.MethodPost)

	router.HandleFunc("/matches/{id}/maps/ban", mah.BanMapHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/maps/choose", mah.ChooseMapHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/maps/game-result", mah.RecordGameResultHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/maps/tiebreaker", mah.ResolveTiebreakerHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/game-code", mah.SetGameCodeHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/result", mah.SubmitResultHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/cancel-vote", mah.VoteCancelHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/afk-report", mah.ReportAfkHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/arbitrator", mah.CallArbitratorHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/chat", mah.SendChatHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/mvp-vote", mah.VoteMVPHandler).Methods(http.MethodPost)

	router.HandleFunc("/matches/{id}/admin/force-winner", mah.ForceWinnerHandler).Methods(http.MethodPost)
	router.HandleFunc("/matches/{id}/admin/status", mah.SetStatusHandler).Methods(http.MethodPatch)
}
