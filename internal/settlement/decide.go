package settlement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crickbet/platform/internal/domain"
)

// Decision is the pure settlement verdict for one wager: its final status
// and the amount credited back to the account (payout for wins, the original
// stake for voids, zero for losses).
type Decision struct {
	Status domain.WagerStatus
	Credit int64
}

// DecideWager compares a primary-market wager's selection against the
// canonical winner. Selections are stored team names (or the DRAW sentinel),
// so plain case-insensitive equality is the rule: with winner "DRAW", a
// selection of either team loses.
func DecideWager(w *domain.Wager, winner string) Decision {
	if strings.EqualFold(strings.TrimSpace(w.Selection), strings.TrimSpace(winner)) {
		return Decision{Status: domain.WagerWon, Credit: w.PotentialPayout}
	}
	return Decision{Status: domain.WagerLost}
}

// DecideVoid refunds exactly the original stake, never the potential payout.
func DecideVoid(w *domain.Wager) Decision {
	return Decision{Status: domain.WagerVoid, Credit: w.Stake}
}

// DecideFancy compares a directional threshold claim of the form
// "(ABOVE|BELOW) n" against the declared result. ABOVE n wins when the
// declared value is >= n; BELOW n wins when it is < n.
func DecideFancy(w *domain.Wager, declared int) (Decision, error) {
	direction, threshold, err := ParseFancyClaim(w.Selection)
	if err != nil {
		return Decision{}, err
	}

	won := false
	switch direction {
	case "ABOVE":
		won = declared >= threshold
	case "BELOW":
		won = declared < threshold
	}
	if won {
		return Decision{Status: domain.WagerWon, Credit: w.PotentialPayout}, nil
	}
	return Decision{Status: domain.WagerLost}, nil
}

// ParseFancyClaim splits a fancy selection into its direction and threshold.
func ParseFancyClaim(selection string) (string, int, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(selection)))
	if len(fields) != 2 || (fields[0] != "ABOVE" && fields[0] != "BELOW") {
		return "", 0, domain.ErrValidation(fmt.Sprintf("malformed fancy selection %q", selection))
	}
	threshold, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, domain.ErrValidation(fmt.Sprintf("malformed fancy threshold %q", selection))
	}
	return fields[0], threshold, nil
}
