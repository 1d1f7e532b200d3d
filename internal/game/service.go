package game

import (
	"context"
	"errors"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"

	"omerta/internal/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const RobSuccessChance = 0.5

// Service is the domain core. It is authorization-agnostic: callers resolve
// identity and rank before invoking it.
type Service struct {
	db     *pgxpool.Pool
	log    *slog.Logger
	rules  config.Rules
	events map[string]EventConfig
	mu     sync.Mutex
	rand   *mathrand.Rand
}

func NewService(db *pgxpool.Pool, rules config.Rules, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		log:    logger,
		rules:  rules,
		events: DefaultEventConfigs(),
		rand:   mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// Rules returns the tunables the service was built with.
func (s *Service) Rules() config.Rules {
	return s.rules
}

// withTx runs fn inside a serializable transaction, retrying on
// serialization failures with capped backoff.
func (s *Service) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

// EnsureUser registers a Discord user the first time they interact with the
// bot. Safe to call on every command.
func (s *Service) EnsureUser(ctx context.Context, userID, username string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (user_id, username, cash, bank, reputation)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, username)
	return err
}

func (s *Service) Balance(ctx context.Context, userID string) (AccountView, error) {
	var out AccountView
	var familyID *uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT user_id, username, cash, bank, reputation, family_id
		FROM accounts
		WHERE user_id = $1
	`, userID).Scan(&out.UserID, &out.Username, &out.Cash, &out.Bank, &out.Reputation, &familyID)
	if err == pgx.ErrNoRows {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	if familyID != nil {
		out.FamilyID = familyID.String()
	}
	return out, nil
}

// Transfer moves cash between two accounts. Either both updates commit or
// neither does.
func (s *Service) Transfer(ctx context.Context, userID, targetID string, amount int64) (TransferResult, error) {
	var out TransferResult
	if err := ValidateAmount(amount, s.rules.MaxTransfer); err != nil {
		return out, err
	}
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := debitCash(ctx, tx, userID, amount); err != nil {
			return err
		}
		if err := creditCash(ctx, tx, targetID, amount); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `SELECT cash FROM accounts WHERE user_id = $1`, userID).Scan(&out.SenderCash); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `SELECT cash FROM accounts WHERE user_id = $1`, targetID).Scan(&out.RecipientCash); err != nil {
			return err
		}
		out.Amount = amount
		if err := recordTransaction(ctx, tx, userID, &targetID, -amount, "transfer", "transfer sent"); err != nil {
			return err
		}
		return recordTransaction(ctx, tx, targetID, &userID, amount, "transfer", "transfer received")
	})
	return out, err
}

// Deposit moves cash into the bank.
func (s *Service) Deposit(ctx context.Context, userID string, amount int64) (BankResult, error) {
	return s.bankMove(ctx, userID, amount, true)
}

// Withdraw moves bank funds back to cash.
func (s *Service) Withdraw(ctx context.Context, userID string, amount int64) (BankResult, error) {
	return s.bankMove(ctx, userID, amount, false)
}

func (s *Service) bankMove(ctx context.Context, userID string, amount int64, toBank bool) (BankResult, error) {
	var out BankResult
	if err := ValidateAmount(amount, 0); err != nil {
		return out, err
	}
	kind, note := "deposit", "bank deposit"
	query := `
		UPDATE accounts
		SET cash = cash - $1, bank = bank + $1, updated_at = now()
		WHERE user_id = $2 AND cash >= $1
		RETURNING cash, bank
	`
	if !toBank {
		kind, note = "withdraw", "bank withdrawal"
		query = `
			UPDATE accounts
			SET cash = cash + $1, bank = bank - $1, updated_at = now()
			WHERE user_id = $2 AND bank >= $1
			RETURNING cash, bank
		`
	}
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, amount, userID).Scan(&out.Cash, &out.Bank)
		if err == pgx.ErrNoRows {
			return classifyBalanceFailure(ctx, tx, userID)
		}
		if err != nil {
			return err
		}
		delta := amount
		if toBank {
			delta = -amount
		}
		return recordTransaction(ctx, tx, userID, nil, delta, kind, note)
	})
	return out, err
}

// CollectDaily grants the daily stipend. The cooldown timestamp and the
// credit commit as one unit.
func (s *Service) CollectDaily(ctx context.Context, userID string, now time.Time) (DailyResult, error) {
	var out DailyResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkCooldown(ctx, tx, userID, ActionDaily, s.rules.DailyCooldown, now); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			UPDATE accounts
			SET cash = cash + $1, updated_at = now()
			WHERE user_id = $2
			RETURNING cash
		`, s.rules.DailyAmount, userID).Scan(&out.Cash)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out.Amount = s.rules.DailyAmount
		if err := chargeCooldown(ctx, tx, userID, ActionDaily, now); err != nil {
			return err
		}
		return recordTransaction(ctx, tx, userID, nil, s.rules.DailyAmount, "daily", "daily reward")
	})
	return out, err
}

// Rob attempts to steal cash from another user. Both outcomes charge the
// rob cooldown.
func (s *Service) Rob(ctx context.Context, userID, targetID string, now time.Time) (RobResult, error) {
	var out RobResult
	if userID == targetID {
		return out, ErrNotAuthorized
	}
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkNotJailed(ctx, tx, userID, now); err != nil {
			return err
		}
		if err := checkCooldown(ctx, tx, userID, ActionRob, s.rules.RobCooldown, now); err != nil {
			return err
		}
		var actorCash, targetCash int64
		err := tx.QueryRow(ctx, `
			SELECT cash FROM accounts WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&actorCash)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			SELECT cash FROM accounts WHERE user_id = $1 FOR UPDATE
		`, targetID).Scan(&targetCash)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if targetCash < MinRobTargetCash {
			return ErrInsufficientFunds
		}

		out = RobResult{}
		if s.nextFloat() < RobSuccessChance {
			amount := s.intBetween(RobStealMin, RobStealMax)
			if amount > targetCash {
				amount = targetCash
			}
			out.Success = true
			out.Amount = amount
			out.ActorCash = actorCash + amount
			out.TargetCash = targetCash - amount
			if _, err := tx.Exec(ctx, `
				UPDATE accounts SET cash = cash - $1, updated_at = now() WHERE user_id = $2
			`, amount, targetID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE accounts SET cash = cash + $1, updated_at = now() WHERE user_id = $2
			`, amount, userID); err != nil {
				return err
			}
			if err := recordTransaction(ctx, tx, userID, &targetID, amount, "rob", "successful robbery"); err != nil {
				return err
			}
		} else {
			fine := s.intBetween(RobFineMin, RobFineMax)
			if fine > actorCash {
				fine = actorCash
			}
			out.Fine = fine
			out.ActorCash = actorCash - fine
			out.TargetCash = targetCash
			if _, err := tx.Exec(ctx, `
				UPDATE accounts SET cash = cash - $1, updated_at = now() WHERE user_id = $2
			`, fine, userID); err != nil {
				return err
			}
			if err := recordTransaction(ctx, tx, userID, &targetID, -fine, "rob", "failed robbery"); err != nil {
				return err
			}
		}
		return chargeCooldown(ctx, tx, userID, ActionRob, now)
	})
	return out, err
}

// Leaderboard lists the wealthiest users by cash plus bank.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, username, cash + bank AS total
		FROM accounts
		ORDER BY total DESC, user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	var rank int64 = 1
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Total); err != nil {
			return nil, err
		}
		r.Rank = rank
		rank++
		out = append(out, r)
	}
	return out, rows.Err()
}

// debitCash subtracts from a user's cash only if the balance covers it.
func debitCash(ctx context.Context, tx pgx.Tx, userID string, amount int64) error {
	cmd, err := tx.Exec(ctx, `
		UPDATE accounts
		SET cash = cash - $1, updated_at = now()
		WHERE user_id = $2 AND cash >= $1
	`, amount, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return classifyBalanceFailure(ctx, tx, userID)
	}
	return nil
}

func creditCash(ctx context.Context, tx pgx.Tx, userID string, amount int64) error {
	cmd, err := tx.Exec(ctx, `
		UPDATE accounts
		SET cash = cash + $1, updated_at = now()
		WHERE user_id = $2
	`, amount, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// classifyBalanceFailure distinguishes a missing account from an
// insufficient balance after a conditional update matched no rows.
func classifyBalanceFailure(ctx context.Context, tx pgx.Tx, userID string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE user_id = $1)
	`, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInsufficientFunds
}

func recordTransaction(ctx context.Context, tx pgx.Tx, userID string, targetID *string, amount int64, kind, note string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, target_user_id, amount, kind, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, targetID, amount, kind, note)
	return err
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) nextFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Float64()
}

// intBetween draws uniformly from [min, max].
func (s *Service) intBetween(min, max int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max <= min {
		return min
	}
	return min + s.rand.Int63n(max-min+1)
}
