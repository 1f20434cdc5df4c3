package domain

// Operation is an action a caller attempts on tasks.
type Operation string

const (
	OpCreate  Operation = "create"
	OpReadAll Operation = "read_all"
	OpReadOne Operation = "read_one"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
)

// Operations lists every operation gated by the authorizer.
var Operations = []Operation{OpCreate, OpReadAll, OpReadOne, OpUpdate, OpDelete}

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}
