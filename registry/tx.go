package registry

import (
	"fmt"

	"github.com/hupe1980/lms/core"
	"github.com/hupe1980/lms/logging"
)

// Entity names an identifier space for FindByID.
type Entity int

const (
	EntityUser Entity = iota
	EntityCourse
	EntityAssignment
	EntitySubmission
)

// String returns the string representation of the entity kind.
func (e Entity) String() string {
	switch e {
	case EntityUser:
		return "user"
	case EntityCourse:
		return "course"
	case EntityAssignment:
		return "assignment"
	case EntitySubmission:
		return "submission"
	default:
		return "unknown"
	}
}

// Tx is the view of the registry handed to View and Update callbacks. It must
// not be retained after the callback returns.
type Tx struct {
	r        *Registry
	writable bool
}

// Writable reports whether the transaction was opened by Update.
func (tx *Tx) Writable() bool { return tx.writable }

// FindByID resolves id in the space named by kind.
func (tx *Tx) FindByID(kind Entity, id int) (any, error) {
	var (
		v   any
		err error
	)

	switch kind {
	case EntityUser:
		v, err = tx.FindUser(id)
	case EntityCourse:
		v, err = tx.FindCourse(id)
	case EntityAssignment:
		v, err = tx.FindAssignment(id)
	case EntitySubmission:
		v, err = tx.FindSubmission(id)
	default:
		err = core.NewError("find", core.KindNotFound, "unknown entity kind %d", int(kind))
	}

	if err != nil {
		return nil, err
	}

	return v, nil
}

// FindUser returns the user with id.
func (tx *Tx) FindUser(id int) (core.User, error) {
	users := tx.r.users
	for i := 0; i < users.Len(); i++ {
		if u := users.At(i); u.ID() == id {
			return u, nil
		}
	}

	return nil, core.NewError("find", core.KindNotFound, "user %d not found", id)
}

// FindCourse returns the course with id.
func (tx *Tx) FindCourse(id int) (*core.Course, error) {
	courses := tx.r.courses
	for i := 0; i < courses.Len(); i++ {
		if c := courses.At(i); c.ID() == id {
			return c, nil
		}
	}

	return nil, core.NewError("find", core.KindNotFound, "course %d not found", id)
}

// FindAssignment returns the assignment with id.
func (tx *Tx) FindAssignment(id int) (*core.Assignment, error) {
	assignments := tx.r.assignments
	for i := 0; i < assignments.Len(); i++ {
		if a := assignments.At(i); a.ID() == id {
			return a, nil
		}
	}

	return nil, core.NewError("find", core.KindNotFound, "assignment %d not found", id)
}

// FindSubmission returns the submission with id.
func (tx *Tx) FindSubmission(id int) (*core.Submission, error) {
	submissions := tx.r.submissions
	for i := 0; i < submissions.Len(); i++ {
		if s := submissions.At(i); s.ID() == id {
			return s, nil
		}
	}

	return nil, core.NewError("find", core.KindNotFound, "submission %d not found", id)
}

// Owns reports whether u is the very record this registry created under
// u.ID(). Records from another registry, or typed nils, are not owned.
func (tx *Tx) Owns(u core.User) bool {
	if core.IsNil(u) {
		return false
	}

	found, err := tx.FindUser(u.ID())

	return err == nil && found == u
}

// Authenticate matches email case-sensitively then compares the password
// for equality. The first matching user wins.
func (tx *Tx) Authenticate(email, password string) (core.User, error) {
	users := tx.r.users
	for i := 0; i < users.Len(); i++ {
		u := users.At(i)
		if u.Email() == email && u.CheckPassword(password) {
			return u, nil
		}
	}

	return nil, core.NewError("login", core.KindNotFound, "no user matches the given credentials")
}

// CreateAdmin registers a new admin.
func (tx *Tx) CreateAdmin(adminID int, name, email, password string) (*core.Admin, error) {
	var a *core.Admin

	err := tx.addUser("create admin", email, func(id int) core.User {
		a = core.NewAdmin(id, adminID, name, email, password)
		return a
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// CreateFaculty registers a new faculty member.
func (tx *Tx) CreateFaculty(facultyID int, name, email, password string) (*core.Faculty, error) {
	var f *core.Faculty

	err := tx.addUser("create faculty", email, func(id int) core.User {
		f = core.NewFaculty(id, facultyID, name, email, password, tx.r.capacity.FacultyCourses)
		return f
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// CreateStudent registers a new student.
func (tx *Tx) CreateStudent(studentID int, name, email, password string) (*core.Student, error) {
	var s *core.Student

	err := tx.addUser("create student", email, func(id int) core.User {
		s = core.NewStudent(id, studentID, name, email, password, tx.r.capacity.StudentCourses)
		return s
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// addUser enforces email uniqueness and the user ceiling before building the
// record, so a rejected call never consumes an identifier.
func (tx *Tx) addUser(op, email string, build func(id int) core.User) error {
	if !tx.writable {
		return ErrTxNotWritable
	}

	users := tx.r.users
	for i := 0; i < users.Len(); i++ {
		if users.At(i).Email() == email {
			return core.NewError(op, core.KindDuplicate, "email %q already registered", email)
		}
	}

	if users.Full() {
		return core.NewError(op, core.KindCapacityExceeded, "user capacity %d reached", users.Cap())
	}

	u := build(tx.r.next.user)
	if err := users.Add(u); err != nil {
		return core.Wrap(op, err, "add user")
	}

	tx.r.next.user++
	tx.r.logger.Debug("User registered", "user_id", u.ID(), "role", u.Role().String())

	return nil
}

// CreateCourse allocates an unassigned, empty course.
func (tx *Tx) CreateCourse(name string) (*core.Course, error) {
	const op = "create course"

	if !tx.writable {
		return nil, ErrTxNotWritable
	}

	if tx.r.courses.Full() {
		return nil, core.NewError(op, core.KindCapacityExceeded, "course capacity %d reached", tx.r.courses.Cap())
	}

	c := core.NewCourse(tx.r.next.course, name, tx.r.capacity.CourseStudents, tx.r.capacity.CourseAssignments)
	if err := tx.r.courses.Add(c); err != nil {
		return nil, core.Wrap(op, err, "add course")
	}

	tx.r.next.course++
	tx.r.logger.Debug("Course created", "course_id", c.ID())

	return c, nil
}

// CreateAssignment allocates an assignment and attaches it to course. Both
// the registry ceiling and the course ceiling are checked before either
// collection changes.
func (tx *Tx) CreateAssignment(course *core.Course, title, description, due string) (*core.Assignment, error) {
	const op = "create assignment"

	if !tx.writable {
		return nil, ErrTxNotWritable
	}

	if course == nil {
		return nil, core.NewError(op, core.KindNotFound, "course is required")
	}

	if tx.r.assignments.Full() {
		return nil, core.NewError(op, core.KindCapacityExceeded, "assignment capacity %d reached", tx.r.assignments.Cap())
	}

	if err := course.CanAddAssignment(); err != nil {
		return nil, core.Wrap(op, err, "course %d cannot take more assignments", course.ID())
	}

	a := core.NewAssignment(tx.r.next.assignment, title, description, due, course, tx.r.capacity.AssignmentSubmissions)
	if err := tx.r.assignments.CanAdd(a); err != nil {
		return nil, tx.internal(op, err)
	}

	if err := core.AttachAssignment(tx.r.write, a); err != nil {
		return nil, err
	}

	if err := tx.r.assignments.Add(a); err != nil {
		return nil, tx.internal(op, err)
	}

	tx.r.next.assignment++
	tx.r.logger.Debug("Assignment created", "assignment_id", a.ID(), "course_id", course.ID())

	return a, nil
}

// CreateSubmission records a Submitted submission by student for assignment.
// The duplicate rule and both ceilings are checked before anything changes.
func (tx *Tx) CreateSubmission(student *core.Student, assignment *core.Assignment, filePath string) (*core.Submission, error) {
	const op = "create submission"

	if !tx.writable {
		return nil, ErrTxNotWritable
	}

	if student == nil || assignment == nil {
		return nil, core.NewError(op, core.KindNotFound, "student and assignment are required")
	}

	if err := assignment.CanAddSubmissionFrom(student); err != nil {
		return nil, core.Wrap(op, err, "student %d cannot submit to assignment %d", student.ID(), assignment.ID())
	}

	if tx.r.submissions.Full() {
		return nil, core.NewError(op, core.KindCapacityExceeded, "submission capacity %d reached", tx.r.submissions.Cap())
	}

	sub := core.NewSubmission(tx.r.next.submission, student, assignment, filePath, tx.r.clock())
	if err := tx.r.submissions.CanAdd(sub); err != nil {
		return nil, tx.internal(op, err)
	}

	if err := core.AttachSubmission(tx.r.write, sub); err != nil {
		return nil, err
	}

	if err := tx.r.submissions.Add(sub); err != nil {
		return nil, tx.internal(op, err)
	}

	tx.r.next.submission++
	tx.r.logger.Debug("Submission recorded", "submission_id", sub.ID(), "assignment_id", assignment.ID())

	return sub, nil
}

// Notify delivers one notification tagged with batchID. The identifier is
// consumed only when the store accepts the notification.
func (tx *Tx) Notify(batchID string, sender, receiver core.User, message string) (*core.Notification, error) {
	const op = "notify"

	if !tx.writable {
		return nil, ErrTxNotWritable
	}

	if core.IsNil(receiver) {
		return nil, core.NewError(op, core.KindNotFound, "receiver is required")
	}

	if core.IsNil(sender) {
		sender = nil
	}

	n := &core.Notification{
		ID:       tx.r.next.notification,
		BatchID:  batchID,
		Message:  message,
		Sender:   sender,
		Receiver: receiver,
		Time:     tx.r.clock(),
	}
	if err := tx.r.notifications.Append(n); err != nil {
		return nil, core.Wrap(op, err, "deliver to user %d", receiver.ID())
	}

	tx.r.next.notification++

	return n, nil
}

// Enroll adds student to course on both sides.
func (tx *Tx) Enroll(student *core.Student, course *core.Course) error {
	if !tx.writable {
		return ErrTxNotWritable
	}

	return core.Enroll(tx.r.write, student, course)
}

// AssignFaculty makes faculty the instructor of course, removing the course from
// the previous instructor.
func (tx *Tx) AssignFaculty(faculty *core.Faculty, course *core.Course) error {
	if !tx.writable {
		return ErrTxNotWritable
	}

	return core.AssignFaculty(tx.r.write, faculty, course)
}

// Grade overwrites the grade of sub and marks it graded.
func (tx *Tx) Grade(sub *core.Submission, grade float64) error {
	if !tx.writable {
		return ErrTxNotWritable
	}

	return core.GradeSubmission(tx.r.write, sub, grade)
}

// internal reports a registry collection rejecting an insert its callers
// already validated. It never happens while the counters and collections
// agree.
func (tx *Tx) internal(op string, err error) error {
	err = fmt.Errorf("%s: registry rejected pre-checked insert: %w", op, err)
	logging.ErrorWithStack(tx.r.logger, err, "Registry invariant violated", "operation", op)

	return err
}
