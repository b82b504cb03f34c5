// Package lms provides a high-level façade over the registry, the action
// layer and the notification fan-out of the course-management store. Most
// applications interact with this package by:
//  1. Creating an LMS via New() (optionally overriding capacities, logger or stores)
//  2. Registering users (admins, faculty, students)
//  3. Logging a user in, casting it to its role, and invoking role-scoped actions
//
// The façade never owns a "current user": the calling shell keeps the actor
// returned by Login and passes it to every action.
package lms

import (
	"time"

	"github.com/hupe1980/lms/action"
	"github.com/hupe1980/lms/config"
	"github.com/hupe1980/lms/core"
	"github.com/hupe1980/lms/logging"
	"github.com/hupe1980/lms/notify"
	"github.com/hupe1980/lms/registry"
)

// Options configures the LMS instance.
type Options struct {
	// Capacity bounds every collection (defaults to config.DefaultCapacity).
	Capacity config.Capacity

	// Notifications receives fan-out (defaults to an in-memory store sized by
	// Capacity.Notifications).
	Notifications core.NotificationStore

	// Clock stamps submissions and notifications (defaults to time.Now).
	Clock func() time.Time

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// LMS is the high-level façade aggregating the registry and action service.
type LMS struct {
	opts    Options
	reg     *registry.Registry
	actions *action.Service
}

// New creates a new LMS instance with optional overrides.
func New(optFns ...func(o *Options)) *LMS {
	opts := Options{
		Capacity: config.DefaultCapacity,
		Clock:    time.Now,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Notifications == nil {
		opts.Notifications = notify.NewInMemoryStore(opts.Capacity.Notifications)
	}

	reg := registry.New(func(o *registry.Options) {
		o.Capacity = opts.Capacity
		o.Notifications = opts.Notifications
		o.Clock = opts.Clock
		o.Logger = opts.Logger
	})

	svc := action.New(reg, func(o *action.Options) {
		o.Logger = opts.Logger
	})

	return &LMS{opts: opts, reg: reg, actions: svc}
}

// FromConfig creates an LMS sized and logged according to cfg. The logger
// writes to the given LMSLogger; pass nil for a NoOp logger.
func FromConfig(cfg *config.Config, logger *logging.LMSLogger) *LMS {
	return New(func(o *Options) {
		o.Capacity = cfg.Capacity
		if logger != nil {
			o.Logger = logger
		}
	})
}

// Registry exposes the underlying store for lookups and the query surface.
func (m *LMS) Registry() *registry.Registry { return m.reg }

// RegisterAdmin adds an admin account. Emails are unique across all users.
func (m *LMS) RegisterAdmin(adminID int, name, email, password string) (*core.Admin, error) {
	var a *core.Admin

	err := m.reg.Update(func(tx *registry.Tx) error {
		var err error
		a, err = tx.CreateAdmin(adminID, name, email, password)
		return err
	})

	return a, err
}

// RegisterFaculty adds a faculty account.
func (m *LMS) RegisterFaculty(facultyID int, name, email, password string) (*core.Faculty, error) {
	var f *core.Faculty

	err := m.reg.Update(func(tx *registry.Tx) error {
		var err error
		f, err = tx.CreateFaculty(facultyID, name, email, password)
		return err
	})

	return f, err
}

// RegisterStudent adds a student account.
func (m *LMS) RegisterStudent(studentID int, name, email, password string) (*core.Student, error) {
	var s *core.Student

	err := m.reg.Update(func(tx *registry.Tx) error {
		var err error
		s, err = tx.CreateStudent(studentID, name, email, password)
		return err
	})

	return s, err
}

// Login returns the user matching email and password exactly.
func (m *LMS) Login(email, password string) (core.User, error) {
	return m.actions.Login(email, password)
}

// AsAdmin casts u to *core.Admin when its role matches.
func (m *LMS) AsAdmin(u core.User) (*core.Admin, bool) { return core.AsAdmin(u) }

// AsFaculty casts u to *core.Faculty when its role matches.
func (m *LMS) AsFaculty(u core.User) (*core.Faculty, bool) { return core.AsFaculty(u) }

// AsStudent casts u to *core.Student when its role matches.
func (m *LMS) AsStudent(u core.User) (*core.Student, bool) { return core.AsStudent(u) }

// CreateCourse creates an unassigned course.
func (m *LMS) CreateCourse(admin *core.Admin, name string) (*core.Course, error) {
	return m.actions.CreateCourse(admin, name)
}

// AssignFaculty sets the course's instructor.
func (m *LMS) AssignFaculty(admin *core.Admin, courseID int, faculty *core.Faculty) error {
	return m.actions.AssignFaculty(admin, courseID, faculty)
}

// Enroll adds the student to the course.
func (m *LMS) Enroll(student *core.Student, courseID int) error {
	return m.actions.Enroll(student, courseID)
}

// PostAssignment posts an assignment to a course taught by faculty.
func (m *LMS) PostAssignment(faculty *core.Faculty, courseID int, title, description, due string) (*core.Assignment, error) {
	return m.actions.PostAssignment(faculty, courseID, title, description, due)
}

// Submit records a student's submission.
func (m *LMS) Submit(student *core.Student, assignmentID int, filePath string) (*core.Submission, error) {
	return m.actions.Submit(student, assignmentID, filePath)
}

// Grade grades a submission in a course taught by faculty.
func (m *LMS) Grade(faculty *core.Faculty, submissionID int, grade float64) error {
	return m.actions.Grade(faculty, submissionID, grade)
}

// Inbox returns the notifications received by u.
func (m *LMS) Inbox(u core.User) []*core.Notification { return m.reg.Inbox(u) }
