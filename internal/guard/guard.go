// Package guard issues the write capability required by the mutating
// functions of package core. Only packages inside this module can obtain a
// capability; the zero value is rejected.
package guard

// Write authorizes one mutation of registry-owned entities.
type Write struct {
	issued bool
}

// Issue returns a valid Write capability. The registry calls it once and
// hands the capability to core only from inside an Update.
func Issue() Write { return Write{issued: true} }

// Valid reports whether w was produced by Issue.
func (w Write) Valid() bool { return w.issued }
