// Package gate interposes a shared-secret confirmation step before any
// mutating operation reaches the store. It is access friction for a
// personal ledger, not authentication: the secret is shared, travels with
// every request, and is not cryptographically protected.
package gate

import (
	"crypto/subtle"
	"errors"
	"sync"
)

// ErrWrongSecret is returned by Confirm when the entered secret does not
// match. The pending action stays armed so the caller may retry.
var ErrWrongSecret = errors.New("wrong action password")

// ErrNothingPending is returned by Confirm when no action is armed.
var ErrNothingPending = errors.New("no pending action")

// Kind labels what a pending action will do.
type Kind string

const (
	KindCreate Kind = "create"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
)

// Gate holds at most one pending action and releases it only when the
// configured secret is confirmed. It carries no domain state.
type Gate struct {
	secret string

	mu      sync.Mutex
	kind    Kind
	pending func() error
}

// New creates a gate guarding actions with the given shared secret.
func New(secret string) *Gate {
	return &Gate{secret: secret}
}

// Begin arms the gate with an action. A previously armed action is
// replaced; only one can be pending at a time.
func (g *Gate) Begin(kind Kind, action func() error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.kind = kind
	g.pending = action
}

// Pending returns the kind of the armed action, or "" when none is armed.
func (g *Gate) Pending() Kind {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return ""
	}
	return g.kind
}

// Confirm runs the pending action if entered matches the secret and
// clears it. On a wrong secret the action stays pending for a retry and
// nothing is invoked. The action's own error is passed through; the
// action is cleared either way once it has run.
func (g *Gate) Confirm(entered string) error {
	g.mu.Lock()
	if g.pending == nil {
		g.mu.Unlock()
		return ErrNothingPending
	}
	if subtle.ConstantTimeCompare([]byte(entered), []byte(g.secret)) != 1 {
		g.mu.Unlock()
		return ErrWrongSecret
	}
	action := g.pending
	g.pending = nil
	g.kind = ""
	g.mu.Unlock()

	return action()
}

// Cancel discards the pending action without invoking it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	g.kind = ""
}
