package invite

import "errors"

var (
	ErrSelfInvite    = errors.New("You cannot invite yourself")
	ErrGameLimit     = errors.New("You have reached the maximum number of active games")
	ErrTargetOffline = errors.New("Target player is offline")
	ErrTargetBusy    = errors.New("Target player is already in a game")
	ErrNotInvited    = errors.New("You were not invited to this game")
)
