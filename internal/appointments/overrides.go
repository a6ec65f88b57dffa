package appointments

// Action is the Trust/Override Resolver's decision for one record.
type Action int

const (
	// ActionKeepMatched persists the row using the matched event.
	ActionKeepMatched Action = iota
	// ActionKeepClaimed persists the row using the export's claimed
	// evaluator; only trusted rows take this path.
	ActionKeepClaimed
	// ActionDrop discards the row. Mismatches and misses are already
	// accumulated by the reporter; the drop itself is silent.
	ActionDrop
)

// Overrides layers the operator-supplied trust and ignore lists on top of
// the matcher's verdict. The ignored set always wins over the trusted set
// for the same appointment id.
type Overrides struct {
	trusted map[string]struct{}
	ignored map[string]struct{}
}

func NewOverrides(trustedIDs, ignoredIDs []string) Overrides {
	o := Overrides{
		trusted: make(map[string]struct{}, len(trustedIDs)),
		ignored: make(map[string]struct{}, len(ignoredIDs)),
	}
	for _, id := range trustedIDs {
		o.trusted[id] = struct{}{}
	}
	for _, id := range ignoredIDs {
		o.ignored[id] = struct{}{}
	}
	return o
}

// IsIgnored reports whether the row must be dropped silently before
// matching even begins.
func (o Overrides) IsIgnored(externalID string) bool {
	_, ok := o.ignored[externalID]
	return ok
}

// IsTrusted reports whether a miss or mismatch may fall back to the row's
// claimed evaluator. An ignored id is never trusted.
func (o Overrides) IsTrusted(externalID string) bool {
	if o.IsIgnored(externalID) {
		return false
	}
	_, ok := o.trusted[externalID]
	return ok
}

// Resolve applies the decision table: exact matches are kept as matched;
// misses and mismatches are kept via the claimed evaluator when trusted and
// one is present, and dropped otherwise.
func (o Overrides) Resolve(rec Record, result MatchResult) Action {
	if result.Outcome == OutcomeMatched {
		return ActionKeepMatched
	}

	if o.IsTrusted(rec.ExternalID) && rec.ClaimedNPI != nil {
		return ActionKeepClaimed
	}

	return ActionDrop
}
