package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HitStats struct {
	UserID         string `json:"user_id"`
	TotalHits      int64  `json:"total_hits"`
	SuccessfulHits int64  `json:"successful_hits"`
	FailedHits     int64  `json:"failed_hits"`
	TotalPayout    int64  `json:"total_payout"`
}

// RequestHit opens a contract on a target. The bounty is escrowed from the
// requester's cash in the same transaction as the contract insert.
func (s *Service) RequestHit(ctx context.Context, requesterID string, familyID uuid.UUID, targetID string, bounty int64, description string) (HitContractView, error) {
	var out HitContractView
	if err := ValidateAmount(bounty, 0); err != nil {
		return out, err
	}
	if requesterID == targetID {
		return out, ErrNotAuthorized
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var targetFamily *uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT family_id FROM accounts WHERE user_id = $1
		`, targetID).Scan(&targetFamily)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if targetFamily != nil && *targetFamily == familyID {
			// No contracts on your own family.
			return ErrNotAuthorized
		}

		if err := debitCash(ctx, tx, requesterID, bounty); err != nil {
			return err
		}

		id := uuid.New()
		var createdAt time.Time
		if err := tx.QueryRow(ctx, `
			INSERT INTO hit_contracts (id, target_id, requester_id, family_id, bounty, status, description)
			VALUES ($1, $2, $3, $4, $5, 'open', $6)
			RETURNING created_at
		`, id, targetID, requesterID, familyID, bounty, description).Scan(&createdAt); err != nil {
			return err
		}
		out = HitContractView{
			ID:          id,
			TargetID:    targetID,
			RequesterID: requesterID,
			FamilyID:    familyID,
			Bounty:      bounty,
			Status:      "open",
			Description: description,
			CreatedAt:   createdAt,
		}
		return recordTransaction(ctx, tx, requesterID, &targetID, -bounty, "hit_request", "hit contract escrow")
	})
	return out, err
}

func (s *Service) ListOpenHits(ctx context.Context) ([]HitContractView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, target_id, requester_id, family_id, bounty, status, description, created_at
		FROM hit_contracts
		WHERE status = 'open'
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HitContractView
	for rows.Next() {
		var c HitContractView
		if err := rows.Scan(&c.ID, &c.TargetID, &c.RequesterID, &c.FamilyID,
			&c.Bounty, &c.Status, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClaimHit lets a third party attempt an open contract. Closing the contract
// is a conditional status transition, so when two hitters race, exactly one
// collects and the other sees ErrContractClosed.
func (s *Service) ClaimHit(ctx context.Context, claimerID string, contractID uuid.UUID, now time.Time) (HitClaimResult, error) {
	var out HitClaimResult
	cfg := s.events["hit"]

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkNotJailed(ctx, tx, claimerID, now); err != nil {
			return err
		}

		var targetID, requesterID, status string
		var bounty int64
		err := tx.QueryRow(ctx, `
			SELECT target_id, requester_id, status, bounty
			FROM hit_contracts
			WHERE id = $1
			FOR UPDATE
		`, contractID).Scan(&targetID, &requesterID, &status, &bounty)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != "open" {
			return ErrContractClosed
		}
		if claimerID == targetID || claimerID == requesterID {
			return ErrNotAuthorized
		}

		outcome, err := s.resolve(cfg, 1, 0)
		if err != nil {
			return err
		}
		out = HitClaimResult{Outcome: outcome, Bounty: bounty}

		if outcome.Success {
			cmd, err := tx.Exec(ctx, `
				UPDATE hit_contracts
				SET status = 'claimed', claimed_by = $1, closed_at = $2
				WHERE id = $3 AND status = 'open'
			`, claimerID, now, contractID)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return ErrContractClosed
			}
			if err := tx.QueryRow(ctx, `
				UPDATE accounts
				SET cash = cash + $1, reputation = reputation + $2, updated_at = now()
				WHERE user_id = $3
				RETURNING cash
			`, bounty, outcome.ReputationDelta, claimerID).Scan(&out.ClaimerCash); err != nil {
				return err
			}
			if err := recordTransaction(ctx, tx, claimerID, &targetID, bounty, "hit_claim", "hit contract payout"); err != nil {
				return err
			}
			return upsertHitStats(ctx, tx, claimerID, true, bounty)
		}

		// Failed attempt: the contract stays open; the hitter does time.
		until := now.Add(outcome.JailTime)
		out.JailedUntil = &until
		if err := setJailedUntil(ctx, tx, claimerID, until); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT cash FROM accounts WHERE user_id = $1
		`, claimerID).Scan(&out.ClaimerCash); err != nil {
			return err
		}
		return upsertHitStats(ctx, tx, claimerID, false, 0)
	})
	return out, err
}

// CancelHit refunds an open contract to its requester.
func (s *Service) CancelHit(ctx context.Context, requesterID string, contractID uuid.UUID, now time.Time) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var bounty int64
		err := tx.QueryRow(ctx, `
			UPDATE hit_contracts
			SET status = 'cancelled', closed_at = $1
			WHERE id = $2 AND requester_id = $3 AND status = 'open'
			RETURNING bounty
		`, now, contractID, requesterID).Scan(&bounty)
		if err == pgx.ErrNoRows {
			return classifyHitCancelFailure(ctx, tx, contractID, requesterID)
		}
		if err != nil {
			return err
		}
		if err := creditCash(ctx, tx, requesterID, bounty); err != nil {
			return err
		}
		return recordTransaction(ctx, tx, requesterID, nil, bounty, "hit_cancel", "hit contract refund")
	})
}

func classifyHitCancelFailure(ctx context.Context, tx pgx.Tx, contractID uuid.UUID, requesterID string) error {
	var owner, status string
	err := tx.QueryRow(ctx, `
		SELECT requester_id, status FROM hit_contracts WHERE id = $1
	`, contractID).Scan(&owner, &status)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != requesterID {
		return ErrNotAuthorized
	}
	return ErrContractClosed
}

func (s *Service) HitStats(ctx context.Context, userID string) (HitStats, error) {
	out := HitStats{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT total_hits, successful_hits, failed_hits, total_payout
		FROM hit_stats
		WHERE user_id = $1
	`, userID).Scan(&out.TotalHits, &out.SuccessfulHits, &out.FailedHits, &out.TotalPayout)
	if err == pgx.ErrNoRows {
		return out, ErrNotFound
	}
	return out, err
}

func upsertHitStats(ctx context.Context, tx pgx.Tx, userID string, success bool, payout int64) error {
	succ, fail := int64(0), int64(1)
	if success {
		succ, fail = 1, 0
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO hit_stats (user_id, total_hits, successful_hits, failed_hits, total_payout)
		VALUES ($1, 1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_hits = hit_stats.total_hits + 1,
			successful_hits = hit_stats.successful_hits + $2,
			failed_hits = hit_stats.failed_hits + $3,
			total_payout = hit_stats.total_payout + $4
	`, userID, succ, fail, payout)
	return err
}
