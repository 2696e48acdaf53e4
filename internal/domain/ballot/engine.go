package ballot

// Action is the state change a cast resolves to.
type Action int

const (
	// ActionInsert records a new ballot.
	ActionInsert Action = iota
	// ActionToggleOff removes the existing ballot carrying the same option.
	ActionToggleOff
	// ActionRemoveOnly removes an existing ballot carrying a different option.
	// The voter must cast again to record the new option.
	ActionRemoveOnly
)

// String returns the action name used in logs and JSON responses.
func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "added"
	case ActionToggleOff:
		return "removed"
	case ActionRemoveOnly:
		return "removed_only"
	}
	return "unknown"
}

// CastRequest names the image, voter, year and option of one cast.
type CastRequest struct {
	ImageID   string
	VoterID   string
	Year      int
	OptionKey string
}

// Plan is the outcome of evaluating a cast against the current ballot state.
type Plan struct {
	Action   Action
	Option   VoteOption
	Existing Ballot // set for ActionToggleOff and ActionRemoveOnly
}

// PlanCast decides what a cast does without touching storage.
// options is the year's catalog in display order; held is every ballot the
// voter has in req.Year.
// PRE: held contains only ballots of req.VoterID in req.Year
// POST: returns a Plan, or one of ErrMissingVoter, ErrInvalidOption,
// ErrOptionAlreadyUsed, ErrExclusiveConflict, ErrLimitReached
func PlanCast(settings YearSettings, options []VoteOption, held []Ballot, req CastRequest) (Plan, error) {
	if req.VoterID == "" {
		return Plan{}, ErrMissingVoter
	}

	opt, ok := ResolveOption(settings, options, req.OptionKey)
	if !ok {
		return Plan{}, ErrInvalidOption
	}

	for _, b := range held {
		if b.ImageID != req.ImageID {
			continue
		}
		if b.Choice.Key == opt.Key {
			return Plan{Action: ActionToggleOff, Option: opt, Existing: b}, nil
		}
		return Plan{Action: ActionRemoveOnly, Option: opt, Existing: b}, nil
	}

	if opt.UniquePerUser {
		for _, b := range held {
			if b.Choice.Key == opt.Key {
				return Plan{}, ErrOptionAlreadyUsed
			}
		}
	}

	if opt.IsAllIn() {
		if len(held) > 0 {
			return Plan{}, ErrExclusiveConflict
		}
	} else if HoldsAllIn(options, held) {
		return Plan{}, ErrExclusiveConflict
	}

	if len(held) >= maxActions(settings) {
		return Plan{}, ErrLimitReached
	}

	return Plan{Action: ActionInsert, Option: opt}, nil
}

// ResolveOption finds the active option for key. In toggle mode an empty
// key selects the first active option.
func ResolveOption(settings YearSettings, options []VoteOption, key string) (VoteOption, bool) {
	if key == "" && settings.VoteMode != ModeUniqueOptions {
		for _, o := range options {
			if o.Active {
				return o, true
			}
		}
		return VoteOption{}, false
	}
	for _, o := range options {
		if o.Key == key && o.Active {
			return o, true
		}
	}
	return VoteOption{}, false
}

// HoldsAllIn reports whether any held ballot carries an all-in option.
// Inactive options still count so that retiring all-in keeps existing
// ballots exclusive.
func HoldsAllIn(options []VoteOption, held []Ballot) bool {
	for _, b := range held {
		if isAllInKey(options, b.Choice.Key) {
			return true
		}
	}
	return false
}

func isAllInKey(options []VoteOption, key string) bool {
	if key == AllInKey {
		return true
	}
	for _, o := range options {
		if o.Key == key {
			return o.IsAllIn()
		}
	}
	return false
}

// UsedCount is the number of actions consumed for votes-left reporting.
// Toggle mode counts ballots. Unique-options mode counts distinct option
// keys, and holding all-in consumes the full allotment.
func UsedCount(settings YearSettings, options []VoteOption, held []Ballot) int {
	if settings.VoteMode != ModeUniqueOptions {
		return len(held)
	}
	if HoldsAllIn(options, held) {
		return maxActions(settings)
	}
	keys := make(map[string]struct{}, len(held))
	for _, b := range held {
		keys[b.Choice.Key] = struct{}{}
	}
	return len(keys)
}

// VotesLeft returns the remaining allotment, never negative.
func VotesLeft(settings YearSettings, options []VoteOption, held []Ballot) int {
	left := maxActions(settings) - UsedCount(settings, options, held)
	if left < 0 {
		return 0
	}
	return left
}

func maxActions(settings YearSettings) int {
	if settings.MaxActions <= 0 {
		return DefaultMaxActions
	}
	return settings.MaxActions
}
