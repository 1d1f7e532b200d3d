package game

import (
	"time"

	"github.com/google/uuid"
)

type AccountView struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Cash       int64  `json:"cash"`
	Bank       int64  `json:"bank"`
	Reputation int64  `json:"reputation"`
	FamilyID   string `json:"family_id,omitempty"`
}

type TransferResult struct {
	Amount        int64 `json:"amount"`
	SenderCash    int64 `json:"sender_cash"`
	RecipientCash int64 `json:"recipient_cash"`
}

type BankResult struct {
	Cash int64 `json:"cash"`
	Bank int64 `json:"bank"`
}

type DailyResult struct {
	Amount int64 `json:"amount"`
	Cash   int64 `json:"cash"`
}

type RobResult struct {
	Success    bool  `json:"success"`
	Amount     int64 `json:"amount"`
	Fine       int64 `json:"fine"`
	ActorCash  int64 `json:"actor_cash"`
	TargetCash int64 `json:"target_cash"`
}

type TurfView struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	OwnerFamilyID       *uuid.UUID `json:"owner_family_id,omitempty"`
	OwnerFamilyName     string     `json:"owner_family_name,omitempty"`
	BaseIncome          int64      `json:"base_income"`
	IncomeMultiplier    float64    `json:"income_multiplier"`
	CapturedAt          *time.Time `json:"captured_at,omitempty"`
	LastIncomeCollected time.Time  `json:"last_income_collected"`
}

type CaptureResult struct {
	TurfID         uuid.UUID `json:"turf_id"`
	TurfName       string    `json:"turf_name"`
	PreviousOwner  string    `json:"previous_owner,omitempty"`
	NewOwnerFamily string    `json:"new_owner_family"`
	CapturedAt     time.Time `json:"captured_at"`
}

type SweepReport struct {
	FamiliesPaid   int   `json:"families_paid"`
	TurfsCollected int   `json:"turfs_collected"`
	Total          int64 `json:"total"`
}

type IncomeResult struct {
	TurfsCollected int   `json:"turfs_collected"`
	Total          int64 `json:"total"`
	FamilyBalance  int64 `json:"family_balance"`
}

type EventOutcome struct {
	EventType       string `json:"event_type"`
	Success         bool   `json:"success"`
	Reward          int64  `json:"reward"`
	Penalty         int64  `json:"penalty"`
	JailTime        time.Duration `json:"jail_time"`
	ReputationDelta int64         `json:"reputation_delta"`
}

type HeistResult struct {
	Outcome       EventOutcome `json:"outcome"`
	FamilyBalance int64        `json:"family_balance"`
	Reputation    int64        `json:"reputation"`
	JailedUntil   *time.Time   `json:"jailed_until,omitempty"`
}

type HitContractView struct {
	ID          uuid.UUID `json:"id"`
	TargetID    string    `json:"target_id"`
	RequesterID string    `json:"requester_id"`
	FamilyID    uuid.UUID `json:"family_id"`
	Bounty      int64     `json:"bounty"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type HitClaimResult struct {
	Outcome     EventOutcome `json:"outcome"`
	Bounty      int64        `json:"bounty"`
	ClaimerCash int64        `json:"claimer_cash"`
	JailedUntil *time.Time   `json:"jailed_until,omitempty"`
}

type FamilyView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	LeaderID   string    `json:"leader_id"`
	Money      int64     `json:"money"`
	Reputation int64     `json:"reputation"`
	Members    int       `json:"members"`
}

type FamilyMemberView struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	RankName  string `json:"rank_name"`
	RankOrder int    `json:"rank_order"`
}

type LeaderboardRow struct {
	Rank     int64  `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Total    int64  `json:"total"`
}
