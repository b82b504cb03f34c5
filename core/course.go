package core

import "time"

// Course groups enrolled students and posted assignments under at most one
// teaching faculty member. A course with no faculty is unassigned.
type Course struct {
	id          int
	name        string
	faculty     *Faculty
	students    *Bounded[*Student]
	assignments *Bounded[*Assignment]
}

// NewCourse constructs an unassigned, empty course. Use
// registry.Tx.CreateCourse so the course gets a registry identifier.
func NewCourse(id int, name string, maxStudents, maxAssignments int) *Course {
	return &Course{
		id:          id,
		name:        name,
		students:    NewBounded[*Student](maxStudents),
		assignments: NewBounded[*Assignment](maxAssignments),
	}
}

// ID returns the registry identifier.
func (c *Course) ID() int { return c.id }

// Name returns the display name.
func (c *Course) Name() string { return c.name }

// Faculty returns the teaching faculty member, or nil when unassigned.
func (c *Course) Faculty() *Faculty { return c.faculty }

// TaughtBy reports whether f is the assigned faculty member.
func (c *Course) TaughtBy(f *Faculty) bool { return f != nil && c.faculty == f }

// StudentCount returns the number of enrolled students.
func (c *Course) StudentCount() int { return c.students.Len() }

// StudentAt returns the i-th student in enrollment order.
func (c *Course) StudentAt(i int) *Student { return c.students.At(i) }

// Students returns a snapshot of the enrolled students.
func (c *Course) Students() []*Student { return c.students.Items() }

// HasStudent reports whether s is enrolled.
func (c *Course) HasStudent(s *Student) bool {
	return s != nil && c.students.Contains(s)
}

// CanAddStudent checks whether s fits the student set.
func (c *Course) CanAddStudent(s *Student) error { return c.students.CanAdd(s) }

// AssignmentCount returns the number of posted assignments.
func (c *Course) AssignmentCount() int { return c.assignments.Len() }

// AssignmentAt returns the i-th assignment in posting order.
func (c *Course) AssignmentAt(i int) *Assignment { return c.assignments.At(i) }

// Assignments returns a snapshot of the posted assignments.
func (c *Course) Assignments() []*Assignment { return c.assignments.Items() }

// CanAddAssignment reports ErrCapacityExceeded when the course cannot take
// another assignment.
func (c *Course) CanAddAssignment() error {
	if c.assignments.Full() {
		return ErrCapacityExceeded
	}

	return nil
}

// Assignment is a piece of work posted to a course. The due date is an opaque
// string; no date arithmetic is performed on it.
type Assignment struct {
	id          int
	title       string
	description string
	due         string
	course      *Course
	submissions *Bounded[*Submission]
}

// NewAssignment constructs an assignment owned by course.
func NewAssignment(id int, title, description, due string, course *Course, maxSubmissions int) *Assignment {
	return &Assignment{
		id:          id,
		title:       title,
		description: description,
		due:         due,
		course:      course,
		submissions: NewBounded[*Submission](maxSubmissions),
	}
}

// ID returns the registry identifier.
func (a *Assignment) ID() int { return a.id }

// Title returns the assignment title.
func (a *Assignment) Title() string { return a.title }

// Description returns the free-form description.
func (a *Assignment) Description() string { return a.description }

// DueDate returns the due date exactly as posted.
func (a *Assignment) DueDate() string { return a.due }

// Course returns the owning course.
func (a *Assignment) Course() *Course { return a.course }

// SubmissionCount returns the number of submissions received.
func (a *Assignment) SubmissionCount() int { return a.submissions.Len() }

// SubmissionAt returns the i-th submission in arrival order.
func (a *Assignment) SubmissionAt(i int) *Submission { return a.submissions.At(i) }

// Submissions returns a snapshot of the received submissions.
func (a *Assignment) Submissions() []*Submission { return a.submissions.Items() }

// SubmissionBy returns the submission made by s, compared by identity.
func (a *Assignment) SubmissionBy(s *Student) (*Submission, bool) {
	for _, sub := range a.submissions.items {
		if sub.student == s {
			return sub, true
		}
	}

	return nil, false
}

// CanAddSubmissionFrom checks the duplicate-submission rule and the
// submission capacity for s.
func (a *Assignment) CanAddSubmissionFrom(s *Student) error {
	if _, ok := a.SubmissionBy(s); ok {
		return ErrDuplicate
	}

	if a.submissions.Full() {
		return ErrCapacityExceeded
	}

	return nil
}

// SubmissionStatus tracks a submission's grading lifecycle.
type SubmissionStatus int

const (
	// StatusPending is never observed outside construction.
	StatusPending SubmissionStatus = iota
	// StatusSubmitted is the state every submission is created in.
	StatusSubmitted
	// StatusGraded is reached only through grading.
	StatusGraded
)

// String returns the string representation of the status.
func (s SubmissionStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusSubmitted:
		return "Submitted"
	case StatusGraded:
		return "Graded"
	default:
		return "Unknown"
	}
}

// Submission is one student's answer to one assignment.
type Submission struct {
	id          int
	student     *Student
	assignment  *Assignment
	filePath    string
	grade       float64
	status      SubmissionStatus
	submittedAt time.Time
}

// NewSubmission constructs a submission in StatusSubmitted with no grade.
// The file path is opaque and never checked against a filesystem.
func NewSubmission(id int, student *Student, assignment *Assignment, filePath string, at time.Time) *Submission {
	return &Submission{
		id:          id,
		student:     student,
		assignment:  assignment,
		filePath:    filePath,
		status:      StatusSubmitted,
		submittedAt: at,
	}
}

// ID returns the registry identifier.
func (s *Submission) ID() int { return s.id }

// Student returns the submitting student.
func (s *Submission) Student() *Student { return s.student }

// Assignment returns the assignment answered.
func (s *Submission) Assignment() *Assignment { return s.assignment }

// FilePath returns the submitted path as given.
func (s *Submission) FilePath() string { return s.filePath }

// Status returns the grading state.
func (s *Submission) Status() SubmissionStatus { return s.status }

// SubmittedAt returns the time the submission was recorded.
func (s *Submission) SubmittedAt() time.Time { return s.submittedAt }

// Grade returns the grade; it is meaningful only once Status is StatusGraded.
func (s *Submission) Grade() float64 { return s.grade }
