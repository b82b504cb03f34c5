// Package core provides the foundational domain types and contracts used by
// the course-management store. It defines:
//
//   - Users (a sealed interface over Admin, Faculty and Student records)
//   - Courses, Assignments and Submissions with their bounded relationship sets
//   - Notifications and the NotificationStore contract used for fan-out
//   - Bounded, the capacity-checked ordered collection backing every set
//   - The error taxonomy (not found, unauthorized, capacity, duplicate)
//
// The package keeps storage and orchestration out of scope. Entities are
// passive records: the registry package creates them and the action package
// mutates them while holding the registry lock. Entity accessors are not
// synchronized on their own; callers sharing a registry across goroutines
// must read through registry.View.
package core
