package domain

// CommitMode selects when a posting's identity is committed to the seen
// store relative to delivery.
//
// PublishThenRecord delivers first and records only on confirmed success, so
// a failed delivery leaves the posting eligible for the next cycle.
// RecordThenPublish records immediately after an accept decision so the
// decision is never recomputed, trading a possibly lost notification for
// bounded evaluation cost. Oracle-backed categories default to the latter.
type CommitMode string

const (
	PublishThenRecord CommitMode = "publish-then-record"
	RecordThenPublish CommitMode = "record-then-publish"
)

func (m CommitMode) Valid() bool {
	return m == PublishThenRecord || m == RecordThenPublish
}

// CategoryPolicy holds the filter rules for one category. RequiredTerms and
// QuarantinedTerms are category-specific; the company blacklist and role
// denylist are global and live in the policy engine.
type CategoryPolicy struct {
	Name              string
	RequiredTerms     []string
	QuarantinedTerms  []string
	UseExternalOracle bool
}

// Category binds a publish target to its policy, search strategy and
// rotation state.
type Category struct {
	Name         string
	ChannelID    int64
	Policy       CategoryPolicy
	SearchTerms  []string
	Rotation     RotationState
	ResultCap    int
	RecencyHours int
	CommitMode   CommitMode
}

// RotationState is an index into a category's ordered search-term list. It is
// mutated only by the scheduler, between harvests, and is never persisted:
// every process lifetime starts back at the first term.
type RotationState struct {
	index int
}

// Current returns the search term for the next harvest.
func (r *RotationState) Current(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return terms[r.index%len(terms)]
}

// Advance moves to the next term, wrapping at termCount.
func (r *RotationState) Advance(termCount int) {
	if termCount <= 0 {
		r.index = 0
		return
	}
	r.index = (r.index + 1) % termCount
}

func (r *RotationState) Index() int {
	return r.index
}
