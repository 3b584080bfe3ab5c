// Package presence tracks which users are reachable and through which
// connections. A user may hold several connections at once (multi-tab);
// they are online while at least one remains.
package presence

import (
	"sync"
	"time"
)

type Status string

const (
	StatusOnline  Status = "online"
	StatusInGame  Status = "in-game"
	StatusOffline Status = "offline"
)

// UserStatus is the broadcastable presence snapshot of one user.
// LastActive is epoch milliseconds.
type UserStatus struct {
	UserID        string `json:"userId"`
	Status        Status `json:"status"`
	CurrentGameID string `json:"currentGameId,omitempty"`
	LastActive    int64  `json:"lastActive"`
}

// Registry keeps a bidirectional connection<->user index plus per-user
// status records. Users are never deleted, only marked offline.
type Registry struct {
	mu       sync.Mutex
	connUser map[string]string          // connId -> userId
	userConn map[string]map[string]bool // userId -> set of connIds
	statuses map[string]UserStatus
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		connUser: map[string]string{},
		userConn: map[string]map[string]bool{},
		statuses: map[string]UserStatus{},
		now:      time.Now,
	}
}

// SetClock replaces the registry's time source. Test hook.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Connect binds connID to userID. wentOnline is true when this is the
// user's first live connection. A connection that re-identifies as a
// different user is unbound from the previous one first; prevUser names
// that user and prevOffline reports whether the rebind took their last
// connection. Idempotent per connID.
func (r *Registry) Connect(connID, userID string) (wentOnline bool, prevUser string, prevOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, bound := r.connUser[connID]
	if bound && old == userID {
		return false, "", false
	}
	if bound {
		prevUser = old
		oldConns := r.userConn[old]
		delete(oldConns, connID)
		if len(oldConns) == 0 {
			delete(r.userConn, old)
			prevOffline = true
		}
	}
	r.connUser[connID] = userID
	conns := r.userConn[userID]
	if conns == nil {
		conns = map[string]bool{}
		r.userConn[userID] = conns
	}
	conns[connID] = true
	return len(conns) == 1, prevUser, prevOffline
}

// Disconnect removes the binding. wentOffline is true when it was the
// user's last connection; ok is false for unknown connection ids.
func (r *Registry) Disconnect(connID string) (userID string, wentOffline bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok = r.connUser[connID]
	if !ok {
		return "", false, false
	}
	delete(r.connUser, connID)
	conns := r.userConn[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.userConn, userID)
		return userID, true, true
	}
	return userID, false, true
}

// UpdateStatus records a new status and stamps LastActive.
func (r *Registry) UpdateStatus(userID string, status Status, gameID string) UserStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	us := UserStatus{
		UserID:        userID,
		Status:        status,
		CurrentGameID: gameID,
		LastActive:    r.now().UnixMilli(),
	}
	r.statuses[userID] = us
	return us
}

// Touch refreshes LastActive without changing status, so users who only
// send moves are not swept as inactive.
func (r *Registry) Touch(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	us, ok := r.statuses[userID]
	if !ok {
		return
	}
	us.LastActive = r.now().UnixMilli()
	r.statuses[userID] = us
}

// UserFor resolves a connection id to its user.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.connUser[connID]
	return userID, ok
}

// ConnectionsFor returns the live connection ids of a user.
func (r *Registry) ConnectionsFor(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]string, 0, len(r.userConn[userID]))
	for id := range r.userConn[userID] {
		conns = append(conns, id)
	}
	return conns
}

// OnlineUsers returns ids of every user whose status is not offline.
func (r *Registry) OnlineUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []string{}
	for id, us := range r.statuses {
		if us.Status != StatusOffline {
			users = append(users, id)
		}
	}
	return users
}

// AllStatuses returns the full presence snapshot.
func (r *Registry) AllStatuses() []UserStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]UserStatus, 0, len(r.statuses))
	for _, us := range r.statuses {
		all = append(all, us)
	}
	return all
}

// InactiveSince returns users not offline whose LastActive predates cutoff.
func (r *Registry) InactiveSince(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms := cutoff.UnixMilli()
	var users []string
	for id, us := range r.statuses {
		if us.Status != StatusOffline && us.LastActive < ms {
			users = append(users, id)
		}
	}
	return users
}
