package game

import "errors"

var (
	// ErrGameNotFound indicates the game doesn't exist.
	ErrGameNotFound = errors.New("game not found")
	// ErrUnreadableRecord indicates the stored tree could not be decoded.
	ErrUnreadableRecord = errors.New("cannot read this record")
	// ErrUnsupportedRecord indicates the record holds no analysis tree.
	ErrUnsupportedRecord = errors.New("record has no analysis tree")
	// ErrForbidden indicates the caller does not own the game.
	ErrForbidden = errors.New("not the owner of this game")
	// ErrInvalidInput indicates invalid game input.
	ErrInvalidInput = errors.New("invalid game input")
)
