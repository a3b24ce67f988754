// Package domain defines the forum entities (posts, replies, threads,
// support requests, grading parameters), their validation rules, and the
// Result type returned by every collection operation.
//
// Validators are pure: they inspect a fully-populated entity and return an
// empty string when it is valid, or a human-readable diagnostic otherwise.
// The same validator runs at creation and at update time, so an update can
// never bypass a rule that creation enforces.
package domain
