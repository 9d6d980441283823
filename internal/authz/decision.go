// Package authz decides whether a caller may perform an operation on a
// message or chat. Every function here is pure: callers load the state,
// authz looks at it and answers.
package authz

type Outcome int

const (
	Allow Outcome = iota
	Deny
)

type Reason string

const (
	ReasonNone Reason = ""
	NotFound   Reason = "not_found"
	Forbidden  Reason = "forbidden"
	Invalid    Reason = "invalid"
	Conflict   Reason = "conflict"
)

// Decision is the answer to one authorization question. A denial always
// carries the domain error that explains it.
type Decision struct {
	Outcome Outcome
	Reason  Reason
	Err     error
}

func allow() Decision {
	return Decision{Outcome: Allow}
}

func deny(reason Reason, err error) Decision {
	return Decision{Outcome: Deny, Reason: reason, Err: err}
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Error returns nil for Allow and the denial error otherwise.
func (d Decision) Error() error {
	if d.Allowed() {
		return nil
	}
	return d.Err
}

// Label is a low-cardinality name for metrics.
func (d Decision) Label() string {
	if d.Allowed() {
		return "allow"
	}
	return "deny_" + string(d.Reason)
}
