package game

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultDailyAmount is granted per daily collection unless the
	// deployment overrides it.
	DefaultDailyAmount = int64(1_000)

	// MinRobTargetCash is the smallest cash pile worth robbing. Targets
	// below it are rejected before any draw happens.
	MinRobTargetCash = int64(100)

	RobStealMin = int64(100)
	RobStealMax = int64(1_000)
	RobFineMin  = int64(100)
	RobFineMax  = int64(500)

	MaxFamilyNameLen = 32
	MaxTurfNameLen   = 48
)

// Rank orders for the default family ladder. Lower order means higher rank.
const (
	RankDon       = 0
	RankUnderboss = 1
	RankCapo      = 2
	RankMadeMan   = 3
	RankAssociate = 4
)

var (
	ErrNotFound                = errors.New("entity not found")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrAlreadyOwned            = errors.New("turf already owned by your family")
	ErrCaptureConflict         = errors.New("turf was captured by someone else")
	ErrNoIncomeAvailable       = errors.New("no turf income available")
	ErrInvalidParticipantCount = errors.New("participant count outside allowed range")
	ErrNotAuthorized           = errors.New("not authorized")
	ErrAlreadyInFamily         = errors.New("already in a family")
	ErrNotInFamily             = errors.New("not in a family")
	ErrContractClosed          = errors.New("contract is no longer open")
	ErrUnknownEventType        = errors.New("unknown event type")
	ErrTxConflict              = errors.New("transaction conflict, please retry")
)

// CooldownError reports a rate-limited action attempted before its interval
// elapsed. RetryAfter is how long the caller must wait.
type CooldownError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Action, e.RetryAfter.Round(time.Second))
}

// IsCooldown reports whether err wraps a CooldownError and returns it.
func IsCooldown(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

var familyNameRE = regexp.MustCompile(`^[a-zA-Z0-9 '\-]{2,32}$`)

var blockedNameFragments = []string{
	"admin",
	"mod",
	"support",
	"discord",
}

// ValidateFamilyName rejects names that would collide with staff labels or
// break embed formatting.
func ValidateFamilyName(name string) error {
	clean := strings.TrimSpace(name)
	if !familyNameRE.MatchString(clean) {
		return fmt.Errorf("family name must be 2-32 letters, digits, spaces or hyphens")
	}
	lower := strings.ToLower(clean)
	for _, fragment := range blockedNameFragments {
		if strings.Contains(lower, fragment) {
			return fmt.Errorf("family name contains blocked content")
		}
	}
	return nil
}

// ValidateAmount checks a user-supplied currency amount against a limit.
// A limit of zero means unlimited.
func ValidateAmount(amount, limit int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if limit > 0 && amount > limit {
		return fmt.Errorf("amount exceeds the limit of %d", limit)
	}
	return nil
}

// FormatMoney renders whole-dollar amounts with thousands separators for
// bot replies.
func FormatMoney(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	out := "$" + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
