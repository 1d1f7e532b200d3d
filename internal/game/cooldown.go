package game

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Action kinds gated by the cooldown table.
const (
	ActionDaily   = "daily"
	ActionHeist   = "heist"
	ActionRob     = "rob"
	ActionCapture = "capture"
	ActionJail    = "jail"
)

// CooldownRemaining computes how long until an action may run again. Zero
// means allowed. A zero last timestamp means the action has never run.
func CooldownRemaining(last, now time.Time, interval time.Duration) time.Duration {
	if last.IsZero() {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// checkCooldown fails with a CooldownError when the action ran within the
// interval. It only reads; the caller charges the cooldown alongside the
// gated effect so both commit or neither does.
func checkCooldown(ctx context.Context, tx pgx.Tx, userID, action string, interval time.Duration, now time.Time) error {
	var last time.Time
	err := tx.QueryRow(ctx, `
		SELECT last_used_at
		FROM cooldowns
		WHERE user_id = $1 AND action = $2
	`, userID, action).Scan(&last)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if remaining := CooldownRemaining(last, now, interval); remaining > 0 {
		return &CooldownError{Action: action, RetryAfter: remaining}
	}
	return nil
}

func chargeCooldown(ctx context.Context, tx pgx.Tx, userID, action string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO cooldowns (user_id, action, last_used_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, action) DO UPDATE SET last_used_at = $3
	`, userID, action, now)
	return err
}

// checkNotJailed blocks risky actions while a jail timer is running.
func checkNotJailed(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	var until *time.Time
	err := tx.QueryRow(ctx, `
		SELECT jailed_until FROM accounts WHERE user_id = $1
	`, userID).Scan(&until)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if until != nil && until.After(now) {
		return &CooldownError{Action: ActionJail, RetryAfter: until.Sub(now)}
	}
	return nil
}

func setJailedUntil(ctx context.Context, tx pgx.Tx, userID string, until time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET jailed_until = $1, updated_at = now() WHERE user_id = $2
	`, until, userID)
	return err
}
