package domain

// FollowUpState is the review pipeline stage of a submission.
type FollowUpState int

const (
	FollowUpSubmitted  FollowUpState = 0
	FollowUpFollowedUp FollowUpState = 1
	FollowUpAccepted   FollowUpState = 2
	FollowUpRejected   FollowUpState = 3
)

// Valid reports whether s is one of the four known states.
func (s FollowUpState) Valid() bool {
	return s >= FollowUpSubmitted && s <= FollowUpRejected
}

var (
	// ActiveStates are the states listed on the main board.
	ActiveStates = []FollowUpState{FollowUpSubmitted, FollowUpFollowedUp, FollowUpAccepted}
	// RejectedStates are listed separately.
	RejectedStates = []FollowUpState{FollowUpRejected}
)

// Duration is the requested slot length code of a submission.
// Codes 1-3 are literal hour counts; 4 means "more than three hours" and 5 means "all weekend".
type Duration int

const (
	DurationMin        Duration = 1
	DurationFourPlus   Duration = 4
	DurationAllWeekend Duration = 5
	DurationMax                 = DurationAllWeekend
)

// Valid reports whether d is a known duration code.
func (d Duration) Valid() bool {
	return d >= DurationMin && d <= DurationMax
}
