package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/spikers-tournament/realtime"
	"github.com/Dosada05/spikers-tournament/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *realtime.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any
// origin.
func NewWebSocketHandler(hub *realtime.Hub, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs subscribes the client to a tournament's snapshots. The client joins
// its room before the current snapshot is loaded, so no change published in
// between is lost; clients drop snapshots older than the version they hold.
// Clients connect to /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getParamFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Reject unknown tournaments before upgrading.
	if _, err := h.tournamentService.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("failed to upgrade websocket connection", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	room := realtime.RoomForTournament(tournamentID)
	client := realtime.NewClient(h.hub, conn, room)
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	view, err := h.tournamentService.GetTournament(r.Context(), tournamentID)
	if err != nil {
		h.logger.Error("failed to load snapshot for new subscriber", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	messageType := realtime.TypeTournamentUpdated
	if !view.Tournament.IsActive() {
		messageType = realtime.TypeTournamentEnded
	}
	if err := client.Enqueue(realtime.Message{Type: messageType, Payload: view, RoomID: room}); err != nil {
		h.logger.Warn("failed to queue initial snapshot", slog.String("tournament_id", tournamentID), slog.Any("error", err))
	}

	h.logger.Debug("websocket client subscribed", slog.String("room", room))
}
