package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/spikers-tournament/middleware"
	"github.com/Dosada05/spikers-tournament/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	logger            *slog.Logger
}

func NewTournamentHandler(ts services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		logger:            logger,
	}
}

// logActor records who issued a write. Without auth configured there is no
// subject and nothing is logged.
func (h *TournamentHandler) logActor(r *http.Request, action, tournamentID string) {
	subject, err := middleware.GetSubjectFromContext(r.Context())
	if err != nil {
		return
	}
	h.logger.Info("tournament write",
		slog.String("action", action),
		slog.String("tournament_id", tournamentID),
		slog.String("subject", subject),
	)
}

// GetSessionTournamentHandler godoc
// @Summary      Latest tournament of a session
// @Tags         tournaments
// @Produce      json
// @Param        sessionID  path  string  true  "Session ID"
// @Success      200  {object}  services.SessionTournamentView
// @Failure      404  {object}  map[string]interface{}
// @Router       /sessions/{sessionID}/tournament [get]
func (h *TournamentHandler) GetSessionTournamentHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getParamFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.GetSessionTournament(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler godoc
// @Summary      Start a tournament for a session
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string                         true  "Session ID"
// @Param        input      body  services.StartTournamentInput  true  "Team formation mode"
// @Success      201  {object}  services.TournamentView
// @Failure      409  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /sessions/{sessionID}/tournament [post]
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getParamFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.StartTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.StartTournament(r.Context(), sessionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.logActor(r, "start", view.Tournament.ID)

	if err := writeJSON(w, http.StatusCreated, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary      Tournament snapshot
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  services.TournamentView
// @Failure      404  {object}  map[string]interface{}
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetActiveMatchHandler godoc
// @Summary      The match that needs a result next
// @Description  activeMatch is null when nothing is playable.
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /tournaments/{tournamentID}/active-match [get]
func (h *TournamentHandler) GetActiveMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.GetActiveMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"activeMatch": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler godoc
// @Summary      Matches grouped by stage
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /tournaments/{tournamentID}/bracket [get]
func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stages, err := h.tournamentService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stages": stages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandingsHandler godoc
// @Summary      Round robin standings
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitGameHandler godoc
// @Summary      Record a game result
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        tournamentID  path  string                    true  "Tournament ID"
// @Param        matchID       path  string                    true  "Match ID"
// @Param        input         body  services.SubmitGameInput  true  "Game score"
// @Success      200  {object}  services.SubmitGameResult
// @Failure      409  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/matches/{matchID}/games [post]
func (h *TournamentHandler) SubmitGameHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getParamFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.SubmitGame(r.Context(), tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.logActor(r, "submit_game", tournamentID)

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndHandler godoc
// @Summary      End a tournament early
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID  path  string  true  "Tournament ID"
// @Success      200  {object}  services.TournamentView
// @Failure      409  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/end [post]
func (h *TournamentHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.EndTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.logActor(r, "end", id)

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
