// Package ws is the per-connection event dispatcher: it owns the
// websocket transport, routes inbound protocol events into the presence,
// invite, store and game components, and fans resulting state back out.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tictac-arena/internal/config"
	"tictac-arena/internal/game"
	"tictac-arena/internal/invite"
	"tictac-arena/internal/presence"
	"tictac-arena/internal/store"
)

var (
	errUnknownEvent  = errors.New("Unknown event")
	errBadPayload    = errors.New("Malformed payload")
	errNotIdentified = errors.New("Send userConnected first")
	errNotAPlayer    = errors.New("Only a player in this game can end it")
	errBadWinner     = errors.New("Winner must be one of the players")
)

type client struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// trySend queues a frame without blocking. A slow client's full buffer
// drops the frame rather than stalling dispatch for everyone else.
func (c *client) trySend(msg []byte) {
	defer func() { _ = recover() }()
	select {
	case c.send <- msg:
	default:
	}
}

func safeClose(ch chan []byte) {
	defer func() { _ = recover() }()
	close(ch)
}

// Server serializes every mutating handler behind one mutex; concurrency
// only comes from independent connections and the janitor sweeps.
type Server struct {
	upgrader websocket.Upgrader
	presence *presence.Registry
	store    *store.Store
	invites  *invite.Coordinator

	gameTimeLimit     time.Duration
	inactivityTimeout time.Duration

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

func NewServer(reg *presence.Registry, st *store.Store, inv *invite.Coordinator, cfg config.ServerConfig) *Server {
	if cfg.GameTimeLimit <= 0 {
		cfg.GameTimeLimit = 10 * time.Minute
	}
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = 5 * time.Minute
	}
	return &Server{
		upgrader:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		presence:          reg,
		store:             st,
		invites:           inv,
		gameTimeLimit:     cfg.GameTimeLimit,
		inactivityTimeout: cfg.InactivityTimeout,
		clients:           map[string]*client{},
		now:               time.Now,
	}
}

// SetClock replaces the server's time source. Test hook.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 32)}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	log.Debug().Str("conn_id", c.id).Msg("connection opened")

	go c.writeLoop()
	s.readLoop(c)
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.handleTransportClose(c)
		_ = c.conn.Close()
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.mu.Lock()
			s.sendError(c, errBadPayload)
			s.mu.Unlock()
			continue
		}
		s.dispatch(c, frame)
	}
}

// dispatch decodes one inbound frame and runs its handler to completion
// under the server mutex. No handler suspends mid-mutation.
func (s *Server) dispatch(c *client, frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch frame.Event {
	case EventUserConnected:
		var p UserConnectedPayload
		if decode(frame.Data, &p) != nil || p.UserID == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleUserConnected(c, p)
	case EventSendGameInvite:
		var p InvitePayload
		if decode(frame.Data, &p) != nil || p.From == "" || p.To == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleSendInvite(c, p)
	case EventAcceptInvite, EventAcceptGameInvite:
		var p AcceptPayload
		if decode(frame.Data, &p) != nil || p.GameID == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleAcceptInvite(c, p)
	case EventDeclineGameInvite:
		var p DeclinePayload
		if decode(frame.Data, &p) != nil || p.GameID == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleDeclineInvite(c, p)
	case EventMakeMove:
		var p MovePayload
		if decode(frame.Data, &p) != nil || p.GameID == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleMakeMove(c, p)
	case EventEndGame:
		var p EndGamePayload
		if decode(frame.Data, &p) != nil || p.GameID == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleEndGame(c, p)
	case EventJoinAsSpectator:
		var p SpectatePayload
		if decode(frame.Data, &p) != nil || p.GameID == "" || p.UserID == "" {
			s.sendError(c, errBadPayload)
			return
		}
		s.handleSpectatorJoin(c, p)
	default:
		s.sendError(c, errUnknownEvent)
	}
}

func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return errBadPayload
	}
	return json.Unmarshal(raw, dst)
}

func (s *Server) handleUserConnected(c *client, p UserConnectedPayload) {
	c.userID = p.UserID
	wentOnline, prevUser, prevOffline := s.presence.Connect(c.id, p.UserID)
	log.Info().Str("user_id", p.UserID).Str("conn_id", c.id).Bool("went_online", wentOnline).Msg("user connected")
	// Re-identifying steals the connection from its previous user.
	if prevOffline {
		s.userWentOfflineLocked(prevUser)
	}

	// A reconnecting player keeps their in-game status.
	status, gameID := presence.StatusOnline, ""
	if id, ok := s.store.ActiveGameFor(p.UserID); ok {
		status, gameID = presence.StatusInGame, id
	}
	us := s.presence.UpdateStatus(p.UserID, status, gameID)
	s.broadcast(EventUserStatusUpdated, us)
	s.broadcast(EventOnlineUsers, s.presence.OnlineUsers())

	// Sync the new connection with current state.
	if gameID != "" {
		if g, err := s.store.Get(gameID); err == nil {
			s.sendTo(c, EventGameStateUpdated, g)
		}
	}
	s.sendTo(c, EventOnlineUsers, s.presence.OnlineUsers())
	s.sendTo(c, EventAllUserStatuses, s.presence.AllStatuses())
}

func (s *Server) handleSendInvite(c *client, p InvitePayload) {
	g, err := s.invites.Send(p.From, p.To)
	if err != nil {
		s.sendError(c, err)
		return
	}
	s.presence.Touch(p.From)
	log.Info().Str("from", p.From).Str("to", p.To).Str("game_id", g.ID).Msg("invite sent")

	notice := GameInviteNotice{GameID: g.ID, From: p.From}
	for _, connID := range s.presence.ConnectionsFor(p.To) {
		if target, ok := s.clients[connID]; ok {
			s.sendTo(target, EventGameInvite, notice)
		}
	}
}

func (s *Server) handleAcceptInvite(c *client, p AcceptPayload) {
	g, err := s.invites.Accept(p.GameID, p.PlayerID)
	if err != nil {
		s.sendError(c, err)
		return
	}
	log.Info().Str("game_id", g.ID).Str("player_id", p.PlayerID).Msg("invite accepted")
	for playerID := range g.Players {
		us := s.presence.UpdateStatus(playerID, presence.StatusInGame, g.ID)
		s.broadcast(EventUserStatusUpdated, us)
	}
	s.broadcast(EventGameStarted, g)
	s.broadcast(EventGameStateUpdated, g)
}

func (s *Server) handleDeclineInvite(c *client, p DeclinePayload) {
	if c.userID == "" {
		s.sendError(c, errNotIdentified)
		return
	}
	if err := s.invites.Decline(p.GameID, c.userID); err != nil {
		s.sendError(c, err)
		return
	}
	s.presence.Touch(c.userID)
	log.Info().Str("game_id", p.GameID).Str("user_id", c.userID).Msg("invite declined")
}

func (s *Server) handleMakeMove(c *client, p MovePayload) {
	g, err := s.store.Get(p.GameID)
	if err != nil {
		s.sendError(c, game.ErrNotInProgress)
		return
	}
	if err := game.Apply(g, p.PlayerID, p.Position, s.now()); err != nil {
		s.sendError(c, err)
		return
	}
	s.presence.Touch(p.PlayerID)

	if g.IsGameOver {
		s.finishGame(g)
	}
	s.broadcast(EventMoveMade, g)
	s.broadcast(EventGameStateUpdated, g)
}

func (s *Server) handleEndGame(c *client, p EndGamePayload) {
	g, err := s.store.Get(p.GameID)
	if err != nil {
		s.sendError(c, err)
		return
	}
	if c.userID == "" || !g.IsPlayer(c.userID) {
		s.sendError(c, errNotAPlayer)
		return
	}
	if g.Status != game.StatusInProgress {
		s.sendError(c, game.ErrNotInProgress)
		return
	}
	if p.Winner != "" && !g.IsPlayer(p.Winner) {
		s.sendError(c, errBadWinner)
		return
	}
	game.ForceEnd(g, p.Winner)
	log.Info().Str("game_id", g.ID).Str("ended_by", c.userID).Str("winner", p.Winner).Msg("game ended by request")
	s.finishGame(g)
	s.broadcast(EventGameStateUpdated, g)
}

func (s *Server) handleSpectatorJoin(c *client, p SpectatePayload) {
	g, err := s.store.Get(p.GameID)
	if err != nil {
		s.sendError(c, err)
		return
	}
	g.AddSpectator(p.UserID)
	s.presence.Touch(p.UserID)
	s.sendTo(c, EventGameStateUpdated, g)
}

// finishGame releases a just-finished game: both players leave the active
// index, return to online, and everyone hears gameEnded.
func (s *Server) finishGame(g *game.Game) {
	s.store.Release(g.ID)
	for playerID := range g.Players {
		// A player who forfeited by disconnecting stays offline.
		if len(s.presence.ConnectionsFor(playerID)) == 0 {
			continue
		}
		us := s.presence.UpdateStatus(playerID, presence.StatusOnline, "")
		s.broadcast(EventUserStatusUpdated, us)
	}
	s.broadcast(EventGameEnded, g)
}

func (s *Server) handleTransportClose(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
	safeClose(c.send)

	userID, wentOffline, ok := s.presence.Disconnect(c.id)
	if !ok {
		return
	}
	log.Debug().Str("conn_id", c.id).Str("user_id", userID).Msg("connection closed")
	if wentOffline {
		s.userWentOfflineLocked(userID)
	}
}

// userWentOfflineLocked is the single forfeit cascade, shared by real
// disconnects, the inactivity sweep, and defensive double-disconnects.
func (s *Server) userWentOfflineLocked(userID string) {
	us := s.presence.UpdateStatus(userID, presence.StatusOffline, "")
	s.broadcast(EventUserStatusUpdated, us)

	if gameID, ok := s.store.ActiveGameFor(userID); ok {
		g, err := s.store.Get(gameID)
		if err == nil && game.Forfeit(g, userID) {
			log.Info().Str("game_id", gameID).Str("leaver", userID).Str("winner", g.Winner).Msg("game forfeited")
			s.finishGame(g)
			s.broadcast(EventGameStateUpdated, g)
		} else {
			s.store.Release(gameID)
		}
	}
	s.broadcast(EventOnlineUsers, s.presence.OnlineUsers())
}

// SweepGames force-finishes in-progress games whose last move is older
// than the game time limit (no winner is declared), then garbage-collects
// finished and never-accepted records past the same age.
func (s *Server) SweepGames(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.gameTimeLimit)
	for _, g := range s.store.StaleInProgress(cutoff) {
		if !game.ForceEnd(g, "") {
			continue
		}
		log.Info().Str("game_id", g.ID).Msg("stale game expired")
		s.finishGame(g)
		s.broadcast(EventGameStateUpdated, g)
	}
	for _, id := range s.store.Expired(cutoff) {
		s.store.Remove(id)
	}
}

// SweepUsers forces users idle past the inactivity timeout through the
// same offline path as a real disconnect, closing their sockets.
func (s *Server) SweepUsers(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.inactivityTimeout)
	for _, userID := range s.presence.InactiveSince(cutoff) {
		log.Info().Str("user_id", userID).Msg("user inactive, forcing offline")
		for _, connID := range s.presence.ConnectionsFor(userID) {
			if cl, ok := s.clients[connID]; ok {
				delete(s.clients, connID)
				safeClose(cl.send)
				if cl.conn != nil {
					_ = cl.conn.Close()
				}
			}
			s.presence.Disconnect(connID)
		}
		s.userWentOfflineLocked(userID)
	}
}

func (s *Server) broadcast(event string, data any) {
	msg, err := encodeFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode broadcast")
		return
	}
	for _, c := range s.clients {
		c.trySend(msg)
	}
}

func (s *Server) sendTo(c *client, event string, data any) {
	msg, err := encodeFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode frame")
		return
	}
	c.trySend(msg)
}

func (s *Server) sendError(c *client, err error) {
	s.sendTo(c, EventGameError, ErrorPayload{Message: err.Error()})
}
