package extractor

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"furniture-extractor/internal/types"
)

// State is the lifecycle state of one vendor run
type State string

const (
	StateIdle        State = "IDLE"
	StateDiscovering State = "DISCOVERING"
	StateExtracting  State = "EXTRACTING"
	StateNormalizing State = "NORMALIZING"
	StateComplete    State = "COMPLETE"
	StateFailed      State = "FAILED"
)

// EXTRACTING and NORMALIZING alternate once per discovered product
var transitions = map[State][]State{
	StateIdle:        {StateDiscovering, StateFailed},
	StateDiscovering: {StateExtracting, StateFailed},
	StateExtracting:  {StateNormalizing, StateComplete, StateFailed},
	StateNormalizing: {StateExtracting, StateComplete, StateFailed},
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// CanTransition reports whether from -> to is a legal move
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

type stateMachine struct {
	state  State
	vendor string
	logger types.Logger
}

func (m *stateMachine) to(next State) error {
	if m.state == next {
		return nil
	}
	if !CanTransition(m.state, next) {
		return fmt.Errorf("vendor %s: illegal state transition %s -> %s", m.vendor, m.state, next)
	}
	m.logger.WithFields(logrus.Fields{"vendor": m.vendor, "state": next}).Debugf("%s -> %s", m.state, next)
	m.state = next
	return nil
}
