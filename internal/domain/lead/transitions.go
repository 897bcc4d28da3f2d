package lead

// Policy decides which status changes and deletions are allowed.
type Policy struct {
	strict bool
}

// StrictPolicy never returns a lead to new and keeps rejected final.
func StrictPolicy() Policy { return Policy{strict: true} }

// OpenPolicy allows every transition and deletion.
func OpenPolicy() Policy { return Policy{} }

var allowedTransitions = map[Status]map[Status]bool{
	StatusNew:      {StatusAccepted: true, StatusPending: true, StatusRejected: true},
	StatusPending:  {StatusPending: true, StatusAccepted: true, StatusRejected: true},
	StatusAccepted: {StatusAccepted: true, StatusRejected: true},
	StatusRejected: {StatusRejected: true},
}

func (p Policy) CanTransition(from, to Status) bool {
	if !p.strict {
		return true
	}
	return allowedTransitions[from][to]
}

func (p Policy) CanDelete(s Status) bool {
	if !p.strict {
		return true
	}
	return s == StatusNew || s == StatusRejected
}

func (p Policy) Strict() bool { return p.strict }
