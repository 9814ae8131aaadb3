package room

import (
	"context"

	"limit-holdem/internal/game"
)

// Recorder receives hand history. Failures are logged and never stop a hand.
type Recorder interface {
	HandStarted(ctx context.Context, roomID string, st *game.GameState) (string, error)
	ActionApplied(ctx context.Context, handID string, seq int, street game.Phase, res game.ApplyResult) error
	HandFinished(ctx context.Context, handID string, st *game.GameState, res *game.ShowdownResult) error
}

type nopRecorder struct{}

func (nopRecorder) HandStarted(context.Context, string, *game.GameState) (string, error) {
	return "", nil
}

func (nopRecorder) ActionApplied(context.Context, string, int, game.Phase, game.ApplyResult) error {
	return nil
}

func (nopRecorder) HandFinished(context.Context, string, *game.GameState, *game.ShowdownResult) error {
	return nil
}
