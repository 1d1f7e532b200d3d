package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// defaultRanks is the ladder every new family starts with. Lower order
// outranks higher order.
var defaultRanks = []struct {
	Name  string
	Order int
}{
	{"don", RankDon},
	{"underboss", RankUnderboss},
	{"capo", RankCapo},
	{"mademan", RankMadeMan},
	{"associate", RankAssociate},
}

func rankOrderByName(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range defaultRanks {
		if r.Name == name {
			return r.Order, true
		}
	}
	return 0, false
}

// CreateFamily starts a new family with the actor as its don.
func (s *Service) CreateFamily(ctx context.Context, userID, name string) (FamilyView, error) {
	var out FamilyView
	if err := ValidateFamilyName(name); err != nil {
		return out, err
	}
	name = strings.TrimSpace(name)

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var existing *uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT family_id FROM accounts WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&existing)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyInFamily
		}

		var taken bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM families WHERE lower(name) = lower($1))
		`, name).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("a family named %q already exists", name)
		}

		id := uuid.New()
		if _, err := tx.Exec(ctx, `
			INSERT INTO families (id, name, leader_id, money, reputation)
			VALUES ($1, $2, $3, 0, 0)
		`, id, name, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO family_members (family_id, user_id, rank_name, rank_order)
			VALUES ($1, $2, 'don', $3)
		`, id, userID, RankDon); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE accounts SET family_id = $1, updated_at = now() WHERE user_id = $2
		`, id, userID); err != nil {
			return err
		}
		out = FamilyView{ID: id, Name: name, LeaderID: userID, Members: 1}
		return nil
	})
	return out, err
}

// JoinFamily adds the actor to an existing family as an associate.
func (s *Service) JoinFamily(ctx context.Context, userID, familyName string) (FamilyView, error) {
	var out FamilyView
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var existing *uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT family_id FROM accounts WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&existing)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyInFamily
		}

		err = tx.QueryRow(ctx, `
			SELECT id, name, leader_id, money, reputation
			FROM families
			WHERE lower(name) = lower($1)
		`, strings.TrimSpace(familyName)).Scan(&out.ID, &out.Name, &out.LeaderID, &out.Money, &out.Reputation)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO family_members (family_id, user_id, rank_name, rank_order)
			VALUES ($1, $2, 'associate', $3)
		`, out.ID, userID, RankAssociate); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE accounts SET family_id = $1, updated_at = now() WHERE user_id = $2
		`, out.ID, userID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			SELECT COUNT(1) FROM family_members WHERE family_id = $1
		`, out.ID).Scan(&out.Members)
	})
	return out, err
}

// LeaveFamily removes the actor from their family. A leader may only leave
// as the last member, which disbands the family and frees its turfs.
func (s *Service) LeaveFamily(ctx context.Context, userID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		familyID, err := memberFamilyID(ctx, tx, userID)
		if err != nil {
			return err
		}

		var leaderID string
		var members int
		if err := tx.QueryRow(ctx, `
			SELECT f.leader_id, (SELECT COUNT(1) FROM family_members m WHERE m.family_id = f.id)
			FROM families f
			WHERE f.id = $1
			FOR UPDATE
		`, familyID).Scan(&leaderID, &members); err != nil {
			return err
		}
		if leaderID == userID && members > 1 {
			return ErrNotAuthorized
		}

		if _, err := tx.Exec(ctx, `
			DELETE FROM family_members WHERE family_id = $1 AND user_id = $2
		`, familyID, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE accounts SET family_id = NULL, updated_at = now() WHERE user_id = $1
		`, userID); err != nil {
			return err
		}
		if leaderID == userID {
			// Disband: turfs revert to unclaimed and accrue nothing
			// until recaptured.
			if _, err := tx.Exec(ctx, `
				UPDATE turfs
				SET owner_family_id = NULL, last_income_collected = now()
				WHERE owner_family_id = $1
			`, familyID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM families WHERE id = $1`, familyID); err != nil {
				return err
			}
		}
		return nil
	})
}

// UserFamily resolves the family the user belongs to.
func (s *Service) UserFamily(ctx context.Context, userID string) (FamilyView, error) {
	var out FamilyView
	err := s.db.QueryRow(ctx, `
		SELECT f.id, f.name, f.leader_id, f.money, f.reputation,
		       (SELECT COUNT(1) FROM family_members m WHERE m.family_id = f.id)
		FROM families f
		JOIN accounts a ON a.family_id = f.id
		WHERE a.user_id = $1
	`, userID).Scan(&out.ID, &out.Name, &out.LeaderID, &out.Money, &out.Reputation, &out.Members)
	if err == pgx.ErrNoRows {
		return out, ErrNotInFamily
	}
	return out, err
}

func (s *Service) FamilyByName(ctx context.Context, name string) (FamilyView, error) {
	var out FamilyView
	err := s.db.QueryRow(ctx, `
		SELECT f.id, f.name, f.leader_id, f.money, f.reputation,
		       (SELECT COUNT(1) FROM family_members m WHERE m.family_id = f.id)
		FROM families f
		WHERE lower(f.name) = lower($1)
	`, strings.TrimSpace(name)).Scan(&out.ID, &out.Name, &out.LeaderID, &out.Money, &out.Reputation, &out.Members)
	if err == pgx.ErrNoRows {
		return out, ErrNotFound
	}
	return out, err
}

func (s *Service) FamilyMembers(ctx context.Context, familyID uuid.UUID) ([]FamilyMemberView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.user_id, a.username, m.rank_name, m.rank_order
		FROM family_members m
		JOIN accounts a ON a.user_id = m.user_id
		WHERE m.family_id = $1
		ORDER BY m.rank_order, a.username
	`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FamilyMemberView
	for rows.Next() {
		var m FamilyMemberView
		if err := rows.Scan(&m.UserID, &m.Username, &m.RankName, &m.RankOrder); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FamilyDeposit moves personal cash into the family bank.
func (s *Service) FamilyDeposit(ctx context.Context, userID string, familyID uuid.UUID, amount int64) (int64, error) {
	if err := ValidateAmount(amount, 0); err != nil {
		return 0, err
	}
	var balance int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := debitCash(ctx, tx, userID, amount); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			UPDATE families SET money = money + $1 WHERE id = $2
			RETURNING money
		`, amount, familyID).Scan(&balance)
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return recordTransaction(ctx, tx, userID, nil, -amount, "family_deposit", "deposit to family bank")
	})
	return balance, err
}

// SetRank assigns a member a rank from the default ladder. Authorization is
// the caller's job; the core only validates membership and the rank name.
func (s *Service) SetRank(ctx context.Context, familyID uuid.UUID, targetID, rankName string) error {
	order, ok := rankOrderByName(rankName)
	if !ok {
		return fmt.Errorf("unknown rank %q", rankName)
	}
	if order == RankDon {
		return ErrNotAuthorized
	}
	cmd, err := s.db.Exec(ctx, `
		UPDATE family_members
		SET rank_name = $1, rank_order = $2
		WHERE family_id = $3 AND user_id = $4
	`, strings.ToLower(strings.TrimSpace(rankName)), order, familyID, targetID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ActorHasRank reports whether the user holds rank maxOrder or better in the
// family. The command boundary calls this before rank-gated operations.
func (s *Service) ActorHasRank(ctx context.Context, userID string, familyID uuid.UUID, maxOrder int) (bool, error) {
	var order int
	err := s.db.QueryRow(ctx, `
		SELECT rank_order FROM family_members WHERE family_id = $1 AND user_id = $2
	`, familyID, userID).Scan(&order)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return order <= maxOrder, nil
}

func memberFamilyID(ctx context.Context, tx pgx.Tx, userID string) (uuid.UUID, error) {
	var familyID *uuid.UUID
	err := tx.QueryRow(ctx, `
		SELECT family_id FROM accounts WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&familyID)
	if err == pgx.ErrNoRows {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	if familyID == nil {
		return uuid.Nil, ErrNotInFamily
	}
	return *familyID, nil
}

// FamilyLeaderboard ranks families by bank balance, then reputation.
func (s *Service) FamilyLeaderboard(ctx context.Context, limit int) ([]FamilyView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT f.id, f.name, f.leader_id, f.money, f.reputation,
		       (SELECT COUNT(1) FROM family_members m WHERE m.family_id = f.id)
		FROM families f
		ORDER BY f.money DESC, f.reputation DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FamilyView
	for rows.Next() {
		var v FamilyView
		if err := rows.Scan(&v.ID, &v.Name, &v.LeaderID, &v.Money, &v.Reputation, &v.Members); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
