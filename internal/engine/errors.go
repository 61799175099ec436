package engine

import "errors"

// Sentinel errors returned by battle construction and control.
var (
	ErrInvalidConfig     = errors.New("engine: invalid battle configuration")
	ErrBattleOver        = errors.New("engine: battle is already over")
	ErrUnknownRobot      = errors.New("engine: unknown robot id")
	ErrTournamentAborted = errors.New("engine: tournament aborted")
)
