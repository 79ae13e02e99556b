package expense

import "fmt"

// transitions is the full table of legal status changes. Every pair not
// listed here fails with ErrInvalidTransition. The happy path is linear;
// rejection is only reachable from Submitted and is recoverable by
// re-submission.
var transitions = map[Status][]Status{
	StatusSubmitted:       {StatusCompanyApproved, StatusRejected},
	StatusCompanyApproved: {StatusSchoolLogged},
	StatusSchoolLogged:    {StatusSchoolApproved},
	StatusSchoolApproved:  {StatusSchoolPaid},
	StatusSchoolPaid:      {},
	StatusRejected:        {StatusSubmitted},
}

// CanTransition reports whether a claim may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition returns a typed failure identifying both states when the
// requested change is not in the table.
func checkTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, string(to))
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
