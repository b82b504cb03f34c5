// Package action implements the role-checked business operations of the
// store. Each operation runs inside a single registry.Update, so it either
// completes fully or reports an error without partial effect.
//
// Every operation takes a typed actor (*core.Admin, *core.Faculty or
// *core.Student). A nil actor, or one not created by the service's registry,
// is rejected with core.KindUnauthorized. Callers resolve a generic
// core.User with core.AsAdmin/AsFaculty/AsStudent first.
//
// Notifications are best-effort: when the notification store is full the
// rejection is logged and the operation still succeeds. A failed operation
// never emits notifications.
package action

import (
	"time"

	"github.com/hupe1980/lms/core"
	"github.com/hupe1980/lms/logging"
	"github.com/hupe1980/lms/notify"
	"github.com/hupe1980/lms/registry"
)

// Options configures a Service.
type Options struct {
	// Logger records one line per operation. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Service exposes the admin, faculty and student operations over a registry.
type Service struct {
	reg    *registry.Registry
	logger logging.Logger
}

// New creates a Service operating on reg.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Service {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Service{reg: reg, logger: opts.Logger}
}

// Registry returns the underlying store.
func (s *Service) Registry() *registry.Registry { return s.reg }

// Login returns the user whose email and password match exactly.
func (s *Service) Login(email, password string) (core.User, error) {
	start := time.Now()

	u, err := s.reg.Authenticate(email, password)
	s.record("login", u, "", start, err)

	return u, err
}

// CreateCourse creates an unassigned course on behalf of admin.
func (s *Service) CreateCourse(admin *core.Admin, name string) (*core.Course, error) {
	const op = "create course"

	var course *core.Course

	start := time.Now()
	err := s.reg.Update(func(tx *registry.Tx) error {
		if !tx.Owns(admin) {
			return unauthorized(op, "admin actor required")
		}

		c, err := tx.CreateCourse(name)
		if err != nil {
			return err
		}

		course = c

		return nil
	})
	s.record(op, admin, "", start, err)

	if err != nil {
		return nil, err
	}

	return course, nil
}

// AssignFaculty makes faculty the instructor of the course. A previously
// assigned faculty member loses the course from their assigned set, keeping
// both sides of the relationship consistent. Assigning the current instructor
// again succeeds without changing anything but still notifies them.
func (s *Service) AssignFaculty(admin *core.Admin, courseID int, faculty *core.Faculty) error {
	const op = "assign faculty"

	batch := core.NewID()
	start := time.Now()
	err := s.reg.Update(func(tx *registry.Tx) error {
		if !tx.Owns(admin) {
			return unauthorized(op, "admin actor required")
		}

		if !tx.Owns(faculty) {
			return core.NewError(op, core.KindNotFound, "faculty is not registered")
		}

		course, err := tx.FindCourse(courseID)
		if err != nil {
			return core.Wrap(op, err, "course %d not found", courseID)
		}

		if err := tx.AssignFaculty(faculty, course); err != nil {
			return err
		}

		s.notify(tx, batch, admin, faculty, notify.CourseAssigned(course))

		return nil
	})
	s.record(op, admin, batch, start, err, "course_id", courseID)

	return err
}

// Enroll adds student to the course. Both sides are validated before either
// changes, so a rejection leaves the course and the student untouched.
// Re-enrolling is rejected with core.KindDuplicate.
func (s *Service) Enroll(student *core.Student, courseID int) error {
	const op = "enroll"

	batch := core.NewID()
	start := time.Now()
	err := s.reg.Update(func(tx *registry.Tx) error {
		if !tx.Owns(student) {
			return unauthorized(op, "student actor required")
		}

		course, err := tx.FindCourse(courseID)
		if err != nil {
			return core.Wrap(op, err, "course %d not found", courseID)
		}

		if err := tx.Enroll(student, course); err != nil {
			return err
		}

		if f := course.Faculty(); f != nil {
			s.notify(tx, batch, student, f, notify.StudentEnrolled(student, course))
		}

		return nil
	})
	s.record(op, student, batch, start, err, "course_id", courseID)

	return err
}

// PostAssignment creates an assignment in a course taught by faculty and
// notifies every enrolled student in stored order.
func (s *Service) PostAssignment(faculty *core.Faculty, courseID int, title, description, due string) (*core.Assignment, error) {
	const op = "post assignment"

	var assignment *core.Assignment

	batch := core.NewID()
	start := time.Now()
	err := s.reg.Update(func(tx *registry.Tx) error {
		if !tx.Owns(faculty) {
			return unauthorized(op, "faculty actor required")
		}

		course, err := tx.FindCourse(courseID)
		if err != nil {
			return core.Wrap(op, err, "course %d not found", courseID)
		}

		if !course.TaughtBy(faculty) {
			return unauthorized(op, "faculty does not teach this course")
		}

		a, err := tx.CreateAssignment(course, title, description, due)
		if err != nil {
			return core.Wrap(op, err, "%v", err)
		}

		for _, st := range course.Students() {
			s.notify(tx, batch, faculty, st, notify.AssignmentPosted(a))
		}

		assignment = a

		return nil
	})
	s.record(op, faculty, batch, start, err, "course_id", courseID)

	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// Submit records the student's file for an assignment of a course they are
// enrolled in. A student may submit at most once per assignment.
func (s *Service) Submit(student *core.Student, assignmentID int, filePath string) (*core.Submission, error) {
	const op = "submit"

	var submission *core.Submission

	batch := core.NewID()
	start := time.Now()
	err := s.reg.Update(func(tx *registry.Tx) error {
		if !tx.Owns(student) {
			return unauthorized(op, "student actor required")
		}

		a, err := tx.FindAssignment(assignmentID)
		if err != nil {
			return core.Wrap(op, err, "assignment %d not found", assignmentID)
		}

		course := a.Course()
		if course == nil {
			return core.NewError(op, core.KindNotFound, "assignment %d has no course", assignmentID)
		}

		if !student.IsEnrolled(course) {
			return unauthorized(op, "student is not enrolled in the course")
		}

		sub, err := tx.CreateSubmission(student, a, filePath)
		if err != nil {
			return core.Wrap(op, err, "%v", err)
		}

		if f := course.Faculty(); f != nil {
			s.notify(tx, batch, student, f, notify.SubmissionReceived(a, student))
		}

		submission = sub

		return nil
	})
	s.record(op, student, batch, start, err, "assignment_id", assignmentID)

	if err != nil {
		return nil, err
	}

	return submission, nil
}

// Grade overwrites the grade of a submission in a course taught by faculty
// and marks it graded. Re-grading is allowed; the value is not range checked.
func (s *Service) Grade(faculty *core.Faculty, submissionID int, grade float64) error {
	const op = "grade"

	batch := core.NewID()
	start := time.Now()
	err := s.reg.Update(func(tx *registry.Tx) error {
		if !tx.Owns(faculty) {
			return unauthorized(op, "faculty actor required")
		}

		sub, err := tx.FindSubmission(submissionID)
		if err != nil {
			return core.Wrap(op, err, "submission %d not found", submissionID)
		}

		a := sub.Assignment()
		if a == nil || a.Course() == nil {
			return core.NewError(op, core.KindNotFound, "submission %d has no course", submissionID)
		}

		if !a.Course().TaughtBy(faculty) {
			return unauthorized(op, "faculty does not teach this course")
		}

		if err := tx.Grade(sub, grade); err != nil {
			return err
		}

		s.notify(tx, batch, faculty, sub.Student(), notify.SubmissionGraded(a, grade))

		return nil
	})
	s.record(op, faculty, batch, start, err, "submission_id", submissionID)

	return err
}

func (s *Service) notify(tx *registry.Tx, batch string, sender, receiver core.User, msg string) {
	if _, err := tx.Notify(batch, sender, receiver, msg); err != nil {
		args := []any{"correlation_id", batch, "error", err.Error()}
		if !core.IsNil(receiver) {
			args = append(args, "receiver_id", receiver.ID())
		}
		s.logger.Warn("Notification dropped", args...)
	}
}

func (s *Service) record(op string, actor core.User, batch string, start time.Time, err error, args ...any) {
	l := s.logger

	if ll, ok := l.(*logging.LMSLogger); ok {
		if batch != "" {
			ll = ll.WithContext("correlation_id", batch)
		}
		if !core.IsNil(actor) {
			ll = ll.WithActor(actor.ID(), actor.Role().String())
		}
		l = ll
	} else {
		if batch != "" {
			args = append(args, "correlation_id", batch)
		}
		if !core.IsNil(actor) {
			args = append(args, "actor_id", actor.ID(), "actor_role", actor.Role().String())
		}
	}

	if err != nil {
		args = append(args, "kind", core.KindOf(err).String())
	}

	logging.LogAction(l, op, time.Since(start), err, args...)
}

func unauthorized(op, msg string) error {
	return core.NewError(op, core.KindUnauthorized, "%s", msg)
}
