// Package status defines the three status state machines driving
// orchestration: engineer profiles, company hiring profiles and roles. Each
// entity has one allowed-transition table, validated centrally so handlers
// never branch on status ad hoc.
package status

import "fmt"

// TransitionError reports an attempted transition not present in the
// entity's transition table.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %q to %q", e.Entity, e.From, e.To)
}

func transitionAllowed[S comparable](table map[S][]S, from, to S) bool {
	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
