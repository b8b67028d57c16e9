// Package session holds per-submission transient state: the generated
// submission ID, the tokens threaded between protocol steps, and the
// reference rows resolved for this attempt. A State is created fresh for
// every attempt and discarded afterwards; nothing here survives a retry,
// because every token the remote service issues is bound to the
// submission ID generated at step 1.
package session

import (
	"crypto/rand"
	"sync"

	"arrivalcard/internal/types"
)

const (
	idPrefix   = "ac"
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idRandLen  = 18
)

// NewSubmissionID generates a client-side submission identifier:
// a fixed prefix followed by 18 random lowercase alphanumerics.
func NewSubmissionID() string {
	buf := make([]byte, idRandLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken;
		// nothing sensible to fall back to.
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return idPrefix + string(buf)
}

// State is the mutable context of one submission attempt. The resolver's
// per-category lookups run concurrently, so resolved-row access is
// guarded; the token fields are only touched by the strictly sequential
// driver and need no locking.
type State struct {
	SubmissionID      string
	VerificationToken string

	// ActionToken is issued by step 1 and carried as the bearer
	// credential on every later call. Empty until step 1 succeeds.
	ActionToken string

	// FormToken is the in-flight hidden token threading steps 5-9.
	// Each step consumes the previous value and stores its replacement.
	FormToken string

	// FormTemplateID is returned by the first Next call and echoed on
	// later form submissions within the same session.
	FormTemplateID string

	mu       sync.Mutex
	resolved map[types.Category]types.ReferenceRow
	seed     map[types.Category][]types.ReferenceRow
}

// New creates a fresh State with a newly generated submission ID.
func New(verificationToken string) *State {
	return &State{
		SubmissionID:      NewSubmissionID(),
		VerificationToken: verificationToken,
		resolved:          make(map[types.Category]types.ReferenceRow),
		seed:              make(map[types.Category][]types.ReferenceRow),
	}
}

// Resolve records the row selected for a category.
func (s *State) Resolve(cat types.Category, row types.ReferenceRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved[cat] = row
}

// ResolvedRow returns the row resolved for a category, if any.
func (s *State) ResolvedRow(cat types.Category) (types.ReferenceRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.resolved[cat]
	return row, ok
}

// SeedLists replaces the session option-list cache with the small
// reference lists returned by the gotoAdd step.
func (s *State) SeedLists(lists map[types.Category][]types.ReferenceRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cat, rows := range lists {
		s.seed[cat] = rows
	}
}

// SeedList returns the cached gotoAdd option list for a category.
func (s *State) SeedList(cat types.Category) []types.ReferenceRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed[cat]
}
