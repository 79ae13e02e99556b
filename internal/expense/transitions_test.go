package expense

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccube-expense/ccube-expense/internal/budget"
)

func bucketName(b budget.Bucket) string {
	switch b {
	case budget.BucketPending:
		return "pending"
	case budget.BucketSpent:
		return "spent"
	default:
		return "none"
	}
}

var allStatuses = []Status{
	StatusSubmitted,
	StatusCompanyApproved,
	StatusSchoolLogged,
	StatusSchoolApproved,
	StatusSchoolPaid,
	StatusRejected,
}

func TestTransitionClosure(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusSubmitted, StatusCompanyApproved}:    true,
		{StatusSubmitted, StatusRejected}:           true,
		{StatusCompanyApproved, StatusSchoolLogged}: true,
		{StatusSchoolLogged, StatusSchoolApproved}:  true,
		{StatusSchoolApproved, StatusSchoolPaid}:    true,
		{StatusRejected, StatusSubmitted}:           true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanTransition(from, to)
			require.Equal(t, allowed[[2]Status{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestSchoolPaidIsTerminal(t *testing.T) {
	for _, to := range allStatuses {
		require.False(t, CanTransition(StatusSchoolPaid, to))
	}
}

func TestCheckTransitionNamesBothStates(t *testing.T) {
	err := checkTransition(StatusSubmitted, StatusSchoolPaid)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Contains(t, err.Error(), string(StatusSubmitted))
	require.Contains(t, err.Error(), string(StatusSchoolPaid))
}

func TestCheckTransitionUnknownStatus(t *testing.T) {
	err := checkTransition(StatusSubmitted, Status("NONSENSE"))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatusBuckets(t *testing.T) {
	pending := map[Status]bool{StatusCompanyApproved: true, StatusSchoolLogged: true}
	spent := map[Status]bool{StatusSchoolApproved: true, StatusSchoolPaid: true}

	for _, s := range allStatuses {
		bucket := s.Bucket()
		switch {
		case pending[s]:
			require.Equal(t, "pending", bucketName(bucket), "status %s", s)
		case spent[s]:
			require.Equal(t, "spent", bucketName(bucket), "status %s", s)
		default:
			require.Equal(t, "none", bucketName(bucket), "status %s", s)
		}
	}
}
