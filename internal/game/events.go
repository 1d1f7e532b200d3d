package game

import (
	"context"
	mathrand "math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EventConfig describes one probabilistic event type: who may run it, the
// odds, and what success or failure does.
type EventConfig struct {
	Name            string
	MinParticipants int
	MaxParticipants int
	SuccessChance   float64
	RewardMin       int64
	RewardMax       int64
	PenaltyMin      int64
	PenaltyMax      int64
	JailTime        time.Duration
	ReputationGain  int64
}

// DefaultEventConfigs returns the stock heist table plus the hit event.
func DefaultEventConfigs() map[string]EventConfig {
	return map[string]EventConfig{
		"bank": {
			Name:            "bank",
			MinParticipants: 2,
			MaxParticipants: 4,
			SuccessChance:   0.40,
			RewardMin:       50_000,
			RewardMax:       100_000,
			PenaltyMin:      1_000,
			PenaltyMax:      5_000,
			JailTime:        24 * time.Hour,
			ReputationGain:  10,
		},
		"jewelry": {
			Name:            "jewelry",
			MinParticipants: 1,
			MaxParticipants: 3,
			SuccessChance:   0.60,
			RewardMin:       20_000,
			RewardMax:       50_000,
			PenaltyMin:      1_000,
			PenaltyMax:      5_000,
			JailTime:        12 * time.Hour,
			ReputationGain:  5,
		},
		"drug_run": {
			Name:            "drug_run",
			MinParticipants: 1,
			MaxParticipants: 2,
			SuccessChance:   0.70,
			RewardMin:       10_000,
			RewardMax:       30_000,
			PenaltyMin:      1_000,
			PenaltyMax:      5_000,
			JailTime:        8 * time.Hour,
			ReputationGain:  3,
		},
		"hit": {
			Name:            "hit",
			MinParticipants: 1,
			MaxParticipants: 1,
			SuccessChance:   0.50,
			JailTime:        12 * time.Hour,
			ReputationGain:  5,
		},
	}
}

// reputationBonus converts family reputation into extra success chance:
// one point per percent, capped at +20%.
func reputationBonus(reputation int64) float64 {
	bonus := float64(reputation) * 0.01
	if bonus > 0.20 {
		bonus = 0.20
	}
	if bonus < 0 {
		bonus = 0
	}
	return bonus
}

// resolveEvent draws an outcome for one event. It validates the participant
// count before touching the RNG, so an invalid call never consumes a draw.
func resolveEvent(cfg EventConfig, participants int, bonusChance float64, rng *mathrand.Rand) (EventOutcome, error) {
	var out EventOutcome
	if participants < cfg.MinParticipants || participants > cfg.MaxParticipants {
		return out, ErrInvalidParticipantCount
	}
	chance := cfg.SuccessChance + bonusChance
	if chance > 1 {
		chance = 1
	}
	out.EventType = cfg.Name
	if rng.Float64() < chance {
		out.Success = true
		out.Reward = uniformBetween(rng, cfg.RewardMin, cfg.RewardMax)
		out.ReputationDelta = cfg.ReputationGain
		return out, nil
	}
	out.Penalty = uniformBetween(rng, cfg.PenaltyMin, cfg.PenaltyMax)
	out.JailTime = cfg.JailTime
	return out, nil
}

func uniformBetween(rng *mathrand.Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rng.Int63n(max-min+1)
}

// EventTypes lists the configured heist types for help output.
func (s *Service) EventTypes() []string {
	out := make([]string, 0, len(s.events))
	for name := range s.events {
		if name == "hit" {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// StartHeist runs a heist for the actor's family. Success credits the family
// bank and reputation; failure fines the family and jails the actor. The
// heist cooldown is charged with the outcome in the same transaction.
func (s *Service) StartHeist(ctx context.Context, actorID string, familyID uuid.UUID, heistType string, participants int, now time.Time) (HeistResult, error) {
	var out HeistResult
	cfg, ok := s.events[heistType]
	if !ok || heistType == "hit" {
		return out, ErrUnknownEventType
	}
	if participants < cfg.MinParticipants || participants > cfg.MaxParticipants {
		return out, ErrInvalidParticipantCount
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := checkNotJailed(ctx, tx, actorID, now); err != nil {
			return err
		}
		if err := checkCooldown(ctx, tx, actorID, ActionHeist, s.rules.HeistCooldown, now); err != nil {
			return err
		}

		var money, reputation int64
		err := tx.QueryRow(ctx, `
			SELECT money, reputation FROM families WHERE id = $1 FOR UPDATE
		`, familyID).Scan(&money, &reputation)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		outcome, err := s.resolve(cfg, participants, reputationBonus(reputation))
		if err != nil {
			return err
		}
		out = HeistResult{Outcome: outcome}

		if outcome.Success {
			if err := tx.QueryRow(ctx, `
				UPDATE families
				SET money = money + $1, reputation = reputation + $2
				WHERE id = $3
				RETURNING money, reputation
			`, outcome.Reward, outcome.ReputationDelta, familyID).Scan(&out.FamilyBalance, &out.Reputation); err != nil {
				return err
			}
			if err := recordTransaction(ctx, tx, actorID, nil, outcome.Reward, "heist", "successful "+cfg.Name+" heist"); err != nil {
				return err
			}
		} else {
			// Family reputation never goes negative; neither does the bank.
			fine := outcome.Penalty
			if fine > money {
				fine = money
			}
			out.Outcome.Penalty = fine
			if err := tx.QueryRow(ctx, `
				UPDATE families SET money = money - $1 WHERE id = $2
				RETURNING money, reputation
			`, fine, familyID).Scan(&out.FamilyBalance, &out.Reputation); err != nil {
				return err
			}
			until := now.Add(outcome.JailTime)
			out.JailedUntil = &until
			if err := setJailedUntil(ctx, tx, actorID, until); err != nil {
				return err
			}
			if err := recordTransaction(ctx, tx, actorID, nil, -fine, "heist", "failed "+cfg.Name+" heist"); err != nil {
				return err
			}
		}
		return chargeCooldown(ctx, tx, actorID, ActionHeist, now)
	})
	return out, err
}

// resolve wraps resolveEvent with the service RNG under its mutex.
func (s *Service) resolve(cfg EventConfig, participants int, bonus float64) (EventOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolveEvent(cfg, participants, bonus, s.rand)
}
