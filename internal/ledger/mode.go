package ledger

import (
	"fmt"
	"strings"
)

// Mode selects how ledger mutations are written to the store.
type Mode string

const (
	// ModeDirect issues independent atomic field updates with no idempotency
	// guard. A follow whose second write fails is left half applied.
	ModeDirect Mode = "direct"
	// ModeCompensating reverses the first write of a follow or unfollow when the
	// second one fails. Likes behave as in ModeDirect.
	ModeCompensating Mode = "compensating"
	// ModeTransactional reads the membership sets inside a store transaction and
	// only writes what is needed to reach the requested state.
	ModeTransactional Mode = "transactional"
)

// ParseMode accepts the LEDGER_MODE values. Empty means ModeDirect.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDirect:
		return ModeDirect, nil
	case ModeCompensating:
		return ModeCompensating, nil
	case ModeTransactional:
		return ModeTransactional, nil
	}
	return "", fmt.Errorf("unknown ledger mode %q (want direct, compensating or transactional)", s)
}
