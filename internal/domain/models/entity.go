package models

import "time"

// Entity is implemented by every owner-scoped record so storage backends can
// handle them generically.
type Entity interface {
	GetID() string
	SetID(id string)
	GetOwnerID() string
	GetCreatedAt() time.Time
}

// Period bounds a time window. Zero values leave that side open.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the period, bounds inclusive.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && t.After(p.To) {
		return false
	}
	return true
}
