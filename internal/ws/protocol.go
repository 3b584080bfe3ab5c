package ws

import "encoding/json"

// Event names shared with the browser client. Inbound and outbound frames
// are {"event": <name>, "data": <payload>} JSON text messages.
const (
	EventUserConnected     = "userConnected"
	EventOnlineUsers       = "onlineUsers"
	EventAllUserStatuses   = "allUserStatuses"
	EventUserStatusUpdated = "userStatusUpdated"
	EventSendGameInvite    = "sendGameInvite"
	EventGameInvite        = "gameInvite"
	EventAcceptInvite      = "acceptInvite"
	EventAcceptGameInvite  = "acceptGameInvite"
	EventDeclineGameInvite = "declineGameInvite"
	EventGameStarted       = "gameStarted"
	EventMakeMove          = "makeMove"
	EventMoveMade          = "moveMade"
	EventGameStateUpdated  = "gameStateUpdated"
	EventGameEnded         = "gameEnded"
	EventEndGame           = "endGame"
	EventJoinAsSpectator   = "joinAsSpectator"
	EventGameError         = "gameError"
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type UserConnectedPayload struct {
	UserID string `json:"userId"`
}

type InvitePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type AcceptPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type DeclinePayload struct {
	GameID string `json:"gameId"`
}

type MovePayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

type EndGamePayload struct {
	GameID string `json:"gameId"`
	Winner string `json:"winner,omitempty"`
}

type SpectatePayload struct {
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
}

type GameInviteNotice struct {
	GameID string `json:"gameId"`
	From   string `json:"from"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
