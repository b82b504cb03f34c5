package notify

import (
	"strconv"

	"github.com/hupe1980/lms/core"
)

// CourseAssigned is sent to a faculty member assigned to c.
func CourseAssigned(c *core.Course) string {
	return "You have been assigned to course: " + c.Name()
}

// StudentEnrolled is sent to the faculty of c when s enrolls.
func StudentEnrolled(s *core.Student, c *core.Course) string {
	return s.Name() + " enrolled in " + c.Name()
}

// AssignmentPosted is sent to every student enrolled in the assignment's course.
func AssignmentPosted(a *core.Assignment) string {
	return "New assignment posted: " + a.Title() + " in " + a.Course().Name()
}

// SubmissionReceived is sent to the faculty of the assignment's course.
func SubmissionReceived(a *core.Assignment, s *core.Student) string {
	return "New submission for: " + a.Title() + " by " + s.Name()
}

// SubmissionGraded is sent to the student whose submission was graded.
func SubmissionGraded(a *core.Assignment, grade float64) string {
	return "Your submission graded (" + a.Title() + "): " + strconv.FormatFloat(grade, 'f', -1, 64)
}
