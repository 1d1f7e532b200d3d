package bot

import (
	"errors"
	"fmt"
	"time"

	"omerta/internal/game"
)

const embedColor = 0x8B0000

// userMessage maps core errors to player-facing replies. Anything it does
// not recognize is an internal failure and gets a generic line; the real
// error is logged by the caller.
func userMessage(err error) (string, bool) {
	var ue usageError
	if errors.As(err, &ue) {
		return string(ue), true
	}
	if ce, ok := game.IsCooldown(err); ok {
		wait := ce.RetryAfter.Round(time.Second)
		if ce.Action == game.ActionJail {
			return fmt.Sprintf("You're in jail for another %s.", wait), true
		}
		return fmt.Sprintf("Easy. You can %s again in %s.", ce.Action, wait), true
	}

	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return "You don't have the money for that.", true
	case errors.Is(err, game.ErrNotFound):
		return "No such player, turf or contract.", true
	case errors.Is(err, game.ErrAlreadyOwned):
		return "Your family already runs that turf.", true
	case errors.Is(err, game.ErrCaptureConflict):
		return "Another family beat you to it.", true
	case errors.Is(err, game.ErrNoIncomeAvailable):
		return "Your family holds no turf. Nothing to collect.", true
	case errors.Is(err, game.ErrInvalidParticipantCount):
		return "Wrong crew size for that job.", true
	case errors.Is(err, game.ErrNotAuthorized):
		return "You don't have the rank for that.", true
	case errors.Is(err, game.ErrAlreadyInFamily):
		return "You're already sworn to a family.", true
	case errors.Is(err, game.ErrNotInFamily):
		return "You need a family for that. Try `family join`.", true
	case errors.Is(err, game.ErrContractClosed):
		return "That contract is already closed.", true
	case errors.Is(err, game.ErrUnknownEventType):
		return "Unknown job. Try `heist bank`, `heist jewelry` or `heist drug_run`.", true
	case errors.Is(err, game.ErrTxConflict):
		return "The books are busy. Try again in a moment.", true
	}
	return "Something went wrong on our end.", false
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
