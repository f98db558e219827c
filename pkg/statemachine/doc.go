// Package statemachine provides a small finite state machine with guard-based
// transition branching. Multiple transitions may share the same from-state and
// event; the first one whose guards all pass wins, which lets callers encode
// priority ordering.
package statemachine
