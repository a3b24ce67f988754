package domain

// Entity id prefixes. Every identifier issued by a collection starts with
// one of these, and callers that still speak the string contract tell
// success from failure by checking for the prefix.
const (
	PrefixPost      = "POST"
	PrefixReply     = "REPLY"
	PrefixThread    = "THREAD"
	PrefixRequest   = "REQUEST"
	PrefixParameter = "PARAM"
)

// Result is the outcome of a collection operation: either success carrying
// the (type-prefixed) entity id, or failure carrying a human-readable
// reason. Validation, not-found, authorization and persistence failures all
// use the same shape.
type Result struct {
	OK      bool
	ID      string
	Message string
}

// Success returns an ok Result carrying the entity id.
func Success(id string) Result {
	return Result{OK: true, ID: id}
}

// Failure returns a failed Result carrying the diagnostic message.
func Failure(message string) Result {
	return Result{Message: message}
}

// String renders the legacy wire form: the prefixed id on success, the
// failure message otherwise.
func (r Result) String() string {
	if r.OK {
		return r.ID
	}
	return r.Message
}
