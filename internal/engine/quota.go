package engine

// DefaultMaxFrames is the default limit on live binding frames per rule.
// Multi-valued outputs multiply frames; the limit bounds that growth.
const DefaultMaxFrames = 10000

// QuotaEnforcer bounds the number of binding frames a rule may hold after
// any atom.
type QuotaEnforcer struct {
	maxFrames int
	peak      int
}

// NewQuotaEnforcer creates a quota enforcer with the given limit.
func NewQuotaEnforcer(maxFrames int) *QuotaEnforcer {
	return &QuotaEnforcer{maxFrames: maxFrames}
}

// Check validates a frame count after atom (1-based) of rule.
func (q *QuotaEnforcer) Check(rule string, atom, frames int) error {
	if frames > q.peak {
		q.peak = frames
	}
	if frames > q.maxFrames {
		return NewQuotaError(rule, atom, frames, q.maxFrames)
	}
	return nil
}

// Peak returns the largest frame count seen.
func (q *QuotaEnforcer) Peak() int {
	return q.peak
}

// MaxFrames returns the limit.
func (q *QuotaEnforcer) MaxFrames() int {
	return q.maxFrames
}
