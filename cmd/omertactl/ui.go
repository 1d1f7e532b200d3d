package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fatih/color"

	"omerta/internal/game"
)

var (
	accent  = color.New(color.FgRed, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	neutral = color.New(color.FgHiWhite)
	dim     = color.New(color.FgWhite)
)

type turfView struct {
	Name                string    `json:"name"`
	OwnerFamilyName     string    `json:"owner_family_name"`
	BaseIncome          int64     `json:"base_income"`
	IncomeMultiplier    float64   `json:"income_multiplier"`
	CapturedAt          *string   `json:"captured_at"`
	LastIncomeCollected time.Time `json:"last_income_collected"`
}

type turfsPayload struct {
	Turfs []turfView `json:"turfs"`
}

type hitView struct {
	ID       string `json:"id"`
	TargetID string `json:"target_id"`
	Bounty   int64  `json:"bounty"`
}

type hitsPayload struct {
	Contracts []hitView `json:"contracts"`
}

type accountView struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Cash       int64  `json:"cash"`
	Bank       int64  `json:"bank"`
	Reputation int64  `json:"reputation"`
}

type playerBoardRow struct {
	Rank     int64  `json:"rank"`
	Username string `json:"username"`
	Total    int64  `json:"total"`
}

type playerBoardPayload struct {
	Leaderboard []playerBoardRow `json:"leaderboard"`
}

type familyBoardRow struct {
	Name       string `json:"name"`
	Money      int64  `json:"money"`
	Reputation int64  `json:"reputation"`
	Members    int    `json:"members"`
}

type familyBoardPayload struct {
	Leaderboard []familyBoardRow `json:"leaderboard"`
}

type familyMemberRow struct {
	Username string `json:"username"`
	RankName string `json:"rank_name"`
}

type familyDetailPayload struct {
	Family  familyBoardRow    `json:"family"`
	Members []familyMemberRow `json:"members"`
}

type sweepReport struct {
	FamiliesPaid   int   `json:"families_paid"`
	TurfsCollected int   `json:"turfs_collected"`
	Total          int64 `json:"total"`
}

func renderTurfTable(turfs []turfView) {
	if len(turfs) == 0 {
		printInfo("No turfs seeded yet. Run `omertactl seed-turfs`.")
		return
	}
	accent.Println("TURF MAP")
	for _, t := range turfs {
		owner := t.OwnerFamilyName
		if owner == "" {
			owner = dim.Sprint("unclaimed")
		}
		fmt.Printf("  %-22s %10s x%.1f  %s\n",
			t.Name, game.FormatMoney(t.BaseIncome), t.IncomeMultiplier, owner)
	}
}

func renderTurfDetail(t turfView) {
	accent.Println(t.Name)
	owner := t.OwnerFamilyName
	if owner == "" {
		owner = "unclaimed"
	}
	fmt.Printf("  income:    %s x%.1f per period\n", game.FormatMoney(t.BaseIncome), t.IncomeMultiplier)
	fmt.Printf("  held by:   %s\n", owner)
	fmt.Printf("  collected: %s\n", t.LastIncomeCollected.Format(time.RFC3339))
}

func renderHits(hits []hitView) {
	if len(hits) == 0 {
		printInfo("No open contracts.")
		return
	}
	accent.Println("OPEN CONTRACTS")
	for _, h := range hits {
		fmt.Printf("  %s  %10s  target %s\n", h.ID, game.FormatMoney(h.Bounty), h.TargetID)
	}
}

func renderAccount(a accountView) {
	accent.Println(a.Username)
	fmt.Printf("  cash: %s  bank: %s  rep: %d\n",
		game.FormatMoney(a.Cash), game.FormatMoney(a.Bank), a.Reputation)
}

func renderPlayerBoard(rows []playerBoardRow) {
	accent.Println("RICHEST PLAYERS")
	for _, r := range rows {
		fmt.Printf("  %2d. %-24s %s\n", r.Rank, r.Username, game.FormatMoney(r.Total))
	}
}

func renderFamilyBoard(rows []familyBoardRow) {
	accent.Println("TOP FAMILIES")
	for i, r := range rows {
		fmt.Printf("  %2d. %-24s %10s  rep %d  members %d\n",
			i+1, r.Name, game.FormatMoney(r.Money), r.Reputation, r.Members)
	}
}

func renderFamilyDetail(p familyDetailPayload) {
	accent.Println(p.Family.Name)
	fmt.Printf("  bank: %s  rep: %d\n", game.FormatMoney(p.Family.Money), p.Family.Reputation)
	for _, m := range p.Members {
		fmt.Printf("  %-24s %s\n", m.Username, m.RankName)
	}
}

func renderSweep(r sweepReport) {
	printSuccess(fmt.Sprintf("Paid %s across %d turf(s) to %d family(ies).",
		game.FormatMoney(r.Total), r.TurfsCollected, r.FamiliesPaid))
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
