package core

import "github.com/hupe1980/lms/internal/guard"

// The functions in this file are the only way to change the relationships
// between entities. Each one checks every affected side before changing any
// of them and requires a guard.Write, which only the registry holds.

func authorize(op string, w guard.Write) error {
	if !w.Valid() {
		return NewError(op, KindUnauthorized, "write capability required")
	}

	return nil
}

// Enroll adds s to the student set of c and c to the enrolled set of s.
// Duplicates are reported before capacity; a rejection changes neither side.
func Enroll(w guard.Write, s *Student, c *Course) error {
	const op = "enroll"

	if err := authorize(op, w); err != nil {
		return err
	}

	if s == nil || c == nil {
		return NewError(op, KindNotFound, "student and course are required")
	}

	if c.students.Contains(s) || s.courses.Contains(c) {
		return NewError(op, KindDuplicate, "student %d already enrolled in course %d", s.ID(), c.ID())
	}

	if err := c.students.CanAdd(s); err != nil {
		return Wrap(op, err, "course %d is full", c.ID())
	}

	if err := s.courses.CanAdd(c); err != nil {
		return Wrap(op, err, "student %d reached the enrollment limit", s.ID())
	}

	if err := c.students.Add(s); err != nil {
		return Wrap(op, err, "add student %d to course %d", s.ID(), c.ID())
	}

	if err := s.courses.Add(c); err != nil {
		c.students.Remove(s)
		return Wrap(op, err, "enroll student %d", s.ID())
	}

	return nil
}

// AssignFaculty makes f the instructor of c. The course is removed from the
// previous instructor's assigned set. Assigning the current instructor again
// is a no-op.
func AssignFaculty(w guard.Write, f *Faculty, c *Course) error {
	const op = "assign faculty"

	if err := authorize(op, w); err != nil {
		return err
	}

	if f == nil || c == nil {
		return NewError(op, KindNotFound, "faculty and course are required")
	}

	if err := f.CanAssign(c); err != nil {
		return Wrap(op, err, "faculty %d cannot take course %d", f.ID(), c.ID())
	}

	if !f.courses.Contains(c) {
		if err := f.courses.Add(c); err != nil {
			return Wrap(op, err, "faculty %d cannot take course %d", f.ID(), c.ID())
		}
	}

	if prev := c.faculty; prev != nil && prev != f {
		prev.courses.Remove(c)
	}

	c.faculty = f

	return nil
}

// AttachAssignment appends a to the assignment set of its course.
func AttachAssignment(w guard.Write, a *Assignment) error {
	const op = "attach assignment"

	if err := authorize(op, w); err != nil {
		return err
	}

	if a == nil || a.course == nil {
		return NewError(op, KindNotFound, "assignment with a course is required")
	}

	if err := a.course.assignments.Add(a); err != nil {
		return Wrap(op, err, "course %d cannot take more assignments", a.course.ID())
	}

	return nil
}

// AttachSubmission appends sub to its assignment unless the student already
// submitted or the assignment is full.
func AttachSubmission(w guard.Write, sub *Submission) error {
	const op = "attach submission"

	if err := authorize(op, w); err != nil {
		return err
	}

	if sub == nil || sub.assignment == nil {
		return NewError(op, KindNotFound, "submission with an assignment is required")
	}

	a := sub.assignment
	if err := a.CanAddSubmissionFrom(sub.student); err != nil {
		return Wrap(op, err, "assignment %d rejected the submission", a.ID())
	}

	if err := a.submissions.Add(sub); err != nil {
		return Wrap(op, err, "assignment %d rejected the submission", a.ID())
	}

	return nil
}

// GradeSubmission overwrites the grade of sub and marks it graded.
// Re-grading is allowed and the value is not range checked.
func GradeSubmission(w guard.Write, sub *Submission, grade float64) error {
	const op = "grade"

	if err := authorize(op, w); err != nil {
		return err
	}

	if sub == nil {
		return NewError(op, KindNotFound, "submission is required")
	}

	sub.grade = grade
	sub.status = StatusGraded

	return nil
}
