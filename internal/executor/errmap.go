package executor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/helios-labs/tokenops/internal/errors"
)

// Contract abort codes of the managed token module, fixed by the deployed
// interface.
const (
	abortNotAuthorized  = 1
	abortPaused         = 2
	abortSupplyExceeded = 3
	abortOverflow       = 4
)

var abortCodeRe = regexp.MustCompile(`code (\d+)`)

// MapRawError classifies a raw ledger failure message into an error kind.
// The raw message is always preserved alongside the kind; mapping narrows
// diagnosis, it never replaces the message. Anything unrecognized is
// Unknown, not dropped.
func MapRawError(raw string) errors.LedgerErrorKind {
	if raw == "" {
		return errors.KindUnknown
	}

	if strings.Contains(raw, "MoveAbort") {
		if m := abortCodeRe.FindStringSubmatch(raw); m != nil {
			code, err := strconv.Atoi(m[1])
			if err == nil {
				switch code {
				case abortNotAuthorized:
					return errors.KindAuthorizationDenied
				case abortPaused:
					return errors.KindPauseActive
				case abortSupplyExceeded:
					return errors.KindSupplyExceeded
				case abortOverflow:
					return errors.KindArithmeticOverflow
				}
			}
		}
		return errors.KindUnknown
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "insufficientgas"),
		strings.Contains(lower, "gas balance"),
		strings.Contains(lower, "unable to pay"):
		return errors.KindInsufficientGas
	case strings.Contains(lower, "incorrectsigner"),
		strings.Contains(lower, "not owned by"),
		strings.Contains(lower, "invalid signature"):
		return errors.KindAuthorizationDenied
	case strings.Contains(lower, "objectnotfound"),
		strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "deleted"):
		return errors.KindObjectNotFound
	default:
		return errors.KindUnknown
	}
}
