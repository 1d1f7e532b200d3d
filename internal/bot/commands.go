package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Every prefix command is parsed into a typed struct before the handler
// touches the core, so validation failures never reach a transaction.

// usageError is a player mistake, not a system fault. It is shown verbatim
// and never logged as an error.
type usageError string

func (e usageError) Error() string { return string(e) }

func usagef(format string, args ...any) error {
	return usageError(fmt.Sprintf(format, args...))
}

type BalanceCommand struct {
	TargetID string // empty means the caller
}

type TransferCommand struct {
	TargetID string
	Amount   int64
}

type BankCommand struct {
	Amount int64
}

type RobCommand struct {
	TargetID string
}

type TurfCommand struct {
	Action string // list, info, capture, income
	Name   string
}

type HeistCommand struct {
	Type         string
	Participants int
}

type HitCommand struct {
	Action   string // request, list, claim, cancel
	TargetID string
	Bounty   int64
	ID       string
}

type FamilyCommand struct {
	Action   string // create, join, leave, info, deposit, setrank
	Name     string
	Amount   int64
	TargetID string
	Rank     string
}

type LeaderboardCommand struct {
	Scope string // players, families
}

func parseAmount(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return 0, usagef("%q is not an amount", raw)
	}
	return v, nil
}

// parseMention accepts both <@123> / <@!123> mention syntax and a raw ID.
func parseMention(raw string) (string, error) {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(raw, "<@"), "!"), ">")
	if id == "" || strings.ContainsAny(id, "<>@") {
		return "", usagef("%q is not a user", raw)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", usagef("%q is not a user", raw)
		}
	}
	return id, nil
}

func parseTransfer(args []string) (TransferCommand, error) {
	var cmd TransferCommand
	if len(args) != 2 {
		return cmd, usagef("usage: transfer <@user> <amount>")
	}
	target, err := parseMention(args[0])
	if err != nil {
		return cmd, err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return cmd, err
	}
	cmd.TargetID = target
	cmd.Amount = amount
	return cmd, nil
}

func parseBank(args []string, verb string) (BankCommand, error) {
	var cmd BankCommand
	if len(args) != 1 {
		return cmd, usagef("usage: %s <amount>", verb)
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return cmd, err
	}
	cmd.Amount = amount
	return cmd, nil
}

func parseRob(args []string) (RobCommand, error) {
	var cmd RobCommand
	if len(args) != 1 {
		return cmd, usagef("usage: rob <@user>")
	}
	target, err := parseMention(args[0])
	if err != nil {
		return cmd, err
	}
	cmd.TargetID = target
	return cmd, nil
}

func parseTurf(args []string) (TurfCommand, error) {
	var cmd TurfCommand
	if len(args) == 0 {
		cmd.Action = "list"
		return cmd, nil
	}
	cmd.Action = strings.ToLower(args[0])
	switch cmd.Action {
	case "list", "income":
		return cmd, nil
	case "info", "capture":
		if len(args) < 2 {
			return cmd, usagef("usage: turf %s <name>", cmd.Action)
		}
		cmd.Name = strings.Join(args[1:], " ")
		return cmd, nil
	default:
		return cmd, usagef("usage: turf list|info|capture|income")
	}
}

func parseHeist(args []string) (HeistCommand, error) {
	var cmd HeistCommand
	if len(args) != 2 {
		return cmd, usagef("usage: heist <type> <players>")
	}
	cmd.Type = strings.ToLower(args[0])
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return cmd, usagef("%q is not a player count", args[1])
	}
	cmd.Participants = n
	return cmd, nil
}

func parseHit(args []string) (HitCommand, error) {
	var cmd HitCommand
	if len(args) == 0 {
		cmd.Action = "list"
		return cmd, nil
	}
	cmd.Action = strings.ToLower(args[0])
	switch cmd.Action {
	case "list":
		return cmd, nil
	case "request":
		if len(args) != 3 {
			return cmd, usagef("usage: hit request <@user> <bounty>")
		}
		target, err := parseMention(args[1])
		if err != nil {
			return cmd, err
		}
		bounty, err := parseAmount(args[2])
		if err != nil {
			return cmd, err
		}
		cmd.TargetID = target
		cmd.Bounty = bounty
		return cmd, nil
	case "claim", "cancel":
		if len(args) != 2 {
			return cmd, usagef("usage: hit %s <contract-id>", cmd.Action)
		}
		cmd.ID = args[1]
		return cmd, nil
	default:
		return cmd, usagef("usage: hit request|list|claim|cancel")
	}
}

func parseFamily(args []string) (FamilyCommand, error) {
	var cmd FamilyCommand
	if len(args) == 0 {
		cmd.Action = "info"
		return cmd, nil
	}
	cmd.Action = strings.ToLower(args[0])
	switch cmd.Action {
	case "info", "leave":
		return cmd, nil
	case "create", "join":
		if len(args) < 2 {
			return cmd, usagef("usage: family %s <name>", cmd.Action)
		}
		cmd.Name = strings.Join(args[1:], " ")
		return cmd, nil
	case "deposit":
		if len(args) != 2 {
			return cmd, usagef("usage: family deposit <amount>")
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return cmd, err
		}
		cmd.Amount = amount
		return cmd, nil
	case "setrank":
		if len(args) != 3 {
			return cmd, usagef("usage: family setrank <@user> <rank>")
		}
		target, err := parseMention(args[1])
		if err != nil {
			return cmd, err
		}
		cmd.TargetID = target
		cmd.Rank = strings.ToLower(args[2])
		return cmd, nil
	default:
		return cmd, usagef("usage: family create|join|leave|info|deposit|setrank")
	}
}

func parseLeaderboard(args []string) (LeaderboardCommand, error) {
	cmd := LeaderboardCommand{Scope: "players"}
	if len(args) == 0 {
		return cmd, nil
	}
	switch strings.ToLower(args[0]) {
	case "players", "cash":
		cmd.Scope = "players"
	case "families", "family":
		cmd.Scope = "families"
	default:
		return cmd, usagef("usage: leaderboard [players|families]")
	}
	return cmd, nil
}
