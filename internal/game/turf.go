package game

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// accruedIncome computes the payout a turf owes since it was last collected:
// base * multiplier per income period, floored to whole dollars. Clock skew
// producing a negative elapsed accrues nothing.
func accruedIncome(baseIncome int64, multiplier float64, elapsed, period time.Duration) int64 {
	if baseIncome <= 0 || multiplier <= 0 || elapsed <= 0 || period <= 0 {
		return 0
	}
	periods := elapsed.Seconds() / period.Seconds()
	return int64(math.Floor(float64(baseIncome) * multiplier * periods))
}

// captureCheck decides whether a family may take a turf in its observed
// state. An unclaimed turf is always capturable.
func captureCheck(owner *uuid.UUID, capturedAt *time.Time, family uuid.UUID, now time.Time, cooldown time.Duration) error {
	if owner == nil {
		return nil
	}
	if *owner == family {
		return ErrAlreadyOwned
	}
	if capturedAt != nil {
		if remaining := CooldownRemaining(*capturedAt, now, cooldown); remaining > 0 {
			return &CooldownError{Action: ActionCapture, RetryAfter: remaining}
		}
	}
	return nil
}

func (s *Service) ListTurfs(ctx context.Context) ([]TurfView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.name, t.owner_family_id, COALESCE(f.name, ''),
		       t.base_income, t.income_multiplier, t.captured_at, t.last_income_collected
		FROM turfs t
		LEFT JOIN families f ON f.id = t.owner_family_id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurfView
	for rows.Next() {
		var t TurfView
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerFamilyID, &t.OwnerFamilyName,
			&t.BaseIncome, &t.IncomeMultiplier, &t.CapturedAt, &t.LastIncomeCollected); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Service) TurfByName(ctx context.Context, name string) (TurfView, error) {
	var t TurfView
	err := s.db.QueryRow(ctx, `
		SELECT t.id, t.name, t.owner_family_id, COALESCE(f.name, ''),
		       t.base_income, t.income_multiplier, t.captured_at, t.last_income_collected
		FROM turfs t
		LEFT JOIN families f ON f.id = t.owner_family_id
		WHERE lower(t.name) = lower($1)
	`, strings.TrimSpace(name)).Scan(&t.ID, &t.Name, &t.OwnerFamilyID, &t.OwnerFamilyName,
		&t.BaseIncome, &t.IncomeMultiplier, &t.CapturedAt, &t.LastIncomeCollected)
	if err == pgx.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

// SeedTurfs inserts the default territory map once. Re-running is a no-op.
func (s *Service) SeedTurfs(ctx context.Context, now time.Time) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM turfs`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []struct {
		Name       string
		BaseIncome int64
		Multiplier float64
	}{
		{"The Docks", 800, 1.0},
		{"Little Italy", 1200, 1.0},
		{"Warehouse Row", 600, 1.0},
		{"Casino District", 2000, 1.5},
		{"Fish Market", 500, 1.0},
		{"Union Yards", 900, 1.2},
		{"Red Light District", 1500, 1.3},
		{"Old Harbor", 700, 1.1},
		{"Diamond Exchange", 2500, 1.5},
		{"The Speakeasy", 1000, 1.2},
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, row := range seed {
			if _, err := tx.Exec(ctx, `
				INSERT INTO turfs (id, name, base_income, income_multiplier, last_income_collected)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New(), row.Name, row.BaseIncome, row.Multiplier, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// CaptureTurf reassigns turf ownership. The transition is a conditional
// update keyed on the observed owner and capture timestamp, so exactly one
// of two racing families wins; the loser gets ErrCaptureConflict.
func (s *Service) CaptureTurf(ctx context.Context, actorID, turfName string, familyID uuid.UUID, now time.Time) (CaptureResult, error) {
	var out CaptureResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkNotJailed(ctx, tx, actorID, now); err != nil {
			return err
		}
		for attempt := 0; attempt < 2; attempt++ {
			var (
				turfID     uuid.UUID
				name       string
				owner      *uuid.UUID
				ownerName  string
				capturedAt *time.Time
			)
			err := tx.QueryRow(ctx, `
				SELECT t.id, t.name, t.owner_family_id, COALESCE(f.name, ''), t.captured_at
				FROM turfs t
				LEFT JOIN families f ON f.id = t.owner_family_id
				WHERE lower(t.name) = lower($1)
			`, strings.TrimSpace(turfName)).Scan(&turfID, &name, &owner, &ownerName, &capturedAt)
			if err == pgx.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			if err := captureCheck(owner, capturedAt, familyID, now, s.rules.CaptureCooldown); err != nil {
				return err
			}

			// The new owner starts accruing from zero; stale unowned
			// income is not claimable retroactively.
			cmd, err := tx.Exec(ctx, `
				UPDATE turfs
				SET owner_family_id = $1, captured_at = $2, last_income_collected = $2
				WHERE id = $3
				  AND owner_family_id IS NOT DISTINCT FROM $4
				  AND captured_at IS NOT DISTINCT FROM $5
			`, familyID, now, turfID, owner, capturedAt)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				// Someone else transitioned the turf between our read
				// and write. Re-read once, then report the conflict.
				if attempt == 0 {
					continue
				}
				return ErrCaptureConflict
			}

			var newOwnerName string
			if err := tx.QueryRow(ctx, `SELECT name FROM families WHERE id = $1`, familyID).Scan(&newOwnerName); err != nil {
				return err
			}
			out = CaptureResult{
				TurfID:         turfID,
				TurfName:       name,
				PreviousOwner:  ownerName,
				NewOwnerFamily: newOwnerName,
				CapturedAt:     now,
			}
			return recordTransaction(ctx, tx, actorID, nil, 0, "turf_capture", "captured "+name)
		}
		return ErrCaptureConflict
	})
	return out, err
}

// CollectTurfIncome pays out accrued income for every turf the family owns.
// Each turf settles in its own transaction: the payout and the advance of
// last_income_collected commit together, so a crash mid-sweep never
// double-pays a turf already settled.
func (s *Service) CollectTurfIncome(ctx context.Context, actorID string, familyID uuid.UUID, now time.Time) (IncomeResult, error) {
	var out IncomeResult

	type turfRow struct {
		id        uuid.UUID
		name      string
		base      int64
		mult      float64
		collected time.Time
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, name, base_income, income_multiplier, last_income_collected
		FROM turfs
		WHERE owner_family_id = $1
		ORDER BY name
	`, familyID)
	if err != nil {
		return out, err
	}
	var turfs []turfRow
	for rows.Next() {
		var t turfRow
		if err := rows.Scan(&t.id, &t.name, &t.base, &t.mult, &t.collected); err != nil {
			rows.Close()
			return out, err
		}
		turfs = append(turfs, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, err
	}
	if len(turfs) == 0 {
		return out, ErrNoIncomeAvailable
	}

	for _, t := range turfs {
		owed := accruedIncome(t.base, t.mult, now.Sub(t.collected), s.rules.IncomePeriod)
		err := s.withTx(ctx, func(tx pgx.Tx) error {
			cmd, err := tx.Exec(ctx, `
				UPDATE turfs
				SET last_income_collected = $1
				WHERE id = $2 AND owner_family_id = $3 AND last_income_collected = $4
			`, now, t.id, familyID, t.collected)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				// Captured away or already collected since our read.
				return nil
			}
			out.TurfsCollected++
			if owed == 0 {
				return nil
			}
			if err := tx.QueryRow(ctx, `
				UPDATE families SET money = money + $1 WHERE id = $2
				RETURNING money
			`, owed, familyID).Scan(&out.FamilyBalance); err != nil {
				return err
			}
			out.Total += owed
			return recordTransaction(ctx, tx, actorID, nil, owed, "turf_income", "income from "+t.name)
		})
		if err != nil {
			return out, err
		}
	}

	if out.FamilyBalance == 0 {
		if err := s.db.QueryRow(ctx, `SELECT money FROM families WHERE id = $1`, familyID).Scan(&out.FamilyBalance); err != nil {
			return out, err
		}
	}
	return out, nil
}

// SweepTurfIncome settles accrued income for every family that holds turf,
// credited on behalf of each family's leader. Used by the admin endpoint
// and the background sweep loop.
func (s *Service) SweepTurfIncome(ctx context.Context, now time.Time) (SweepReport, error) {
	var out SweepReport

	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT f.id, f.leader_id
		FROM families f
		JOIN turfs t ON t.owner_family_id = f.id
	`)
	if err != nil {
		return out, err
	}
	type famRow struct {
		id     uuid.UUID
		leader string
	}
	var fams []famRow
	for rows.Next() {
		var f famRow
		if err := rows.Scan(&f.id, &f.leader); err != nil {
			rows.Close()
			return out, err
		}
		fams = append(fams, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, err
	}

	for _, f := range fams {
		res, err := s.CollectTurfIncome(ctx, f.leader, f.id, now)
		if err == ErrNoIncomeAvailable {
			continue
		}
		if err != nil {
			return out, err
		}
		out.FamiliesPaid++
		out.TurfsCollected += res.TurfsCollected
		out.Total += res.Total
	}
	return out, nil
}
