package core

// Role tags the capability set a User carries. It is fixed by the concrete
// user type and cannot change after creation.
type Role int

const (
	// RoleAdmin manages courses and faculty assignment.
	RoleAdmin Role = iota
	// RoleFaculty teaches courses, posts assignments and grades submissions.
	RoleFaculty
	// RoleStudent enrolls in courses and submits work.
	RoleStudent
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleFaculty:
		return "Faculty"
	case RoleStudent:
		return "Student"
	default:
		return "Unknown"
	}
}

// User is the common view over Admin, Faculty and Student. The interface is
// sealed: only the three record types in this package implement it, which
// keeps the role casts below exhaustive.
type User interface {
	ID() int
	Name() string
	Email() string
	Role() Role
	CheckPassword(password string) bool

	base() *account
}

type account struct {
	id       int
	name     string
	email    string
	password string // plaintext, compared by equality only
}

func (a *account) ID() int                            { return a.id }
func (a *account) Name() string                       { return a.name }
func (a *account) Email() string                      { return a.email }
func (a *account) CheckPassword(password string) bool { return a.password == password }
func (a *account) base() *account                     { return a }

// Admin is a user with an administrative identifier and no relationships.
type Admin struct {
	account
	adminID int
}

// NewAdmin constructs an admin record. Use registry.Tx.CreateAdmin so the
// record is owned and identified by a registry.
func NewAdmin(id, adminID int, name, email, password string) *Admin {
	return &Admin{account: account{id: id, name: name, email: email, password: password}, adminID: adminID}
}

// Role returns RoleAdmin.
func (*Admin) Role() Role { return RoleAdmin }

// AdminID returns the administrative identifier.
func (a *Admin) AdminID() int { return a.adminID }

// Faculty is a user who may be assigned to teach courses.
type Faculty struct {
	account
	facultyID int
	courses   *Bounded[*Course]
}

// NewFaculty constructs a faculty record able to teach at most maxCourses
// courses (0 for unbounded).
func NewFaculty(id, facultyID int, name, email, password string, maxCourses int) *Faculty {
	return &Faculty{
		account:   account{id: id, name: name, email: email, password: password},
		facultyID: facultyID,
		courses:   NewBounded[*Course](maxCourses),
	}
}

// Role returns RoleFaculty.
func (*Faculty) Role() Role { return RoleFaculty }

// FacultyID returns the faculty identifier.
func (f *Faculty) FacultyID() int { return f.facultyID }

// AssignedCount returns the number of courses the faculty member teaches.
func (f *Faculty) AssignedCount() int { return f.courses.Len() }

// AssignedAt returns the i-th assigned course in assignment order.
func (f *Faculty) AssignedAt(i int) *Course { return f.courses.At(i) }

// Courses returns a snapshot of the assigned courses.
func (f *Faculty) Courses() []*Course { return f.courses.Items() }

// Teaches reports whether c is in the assigned set.
func (f *Faculty) Teaches(c *Course) bool { return f.courses.Contains(c) }

// CanAssign checks whether c can be added to the assigned set. A course that
// is already assigned is accepted since assignment is idempotent.
func (f *Faculty) CanAssign(c *Course) error {
	if f.courses.Contains(c) {
		return nil
	}

	return f.courses.CanAdd(c)
}

// Student is a user who may enroll in courses.
type Student struct {
	account
	studentID int
	courses   *Bounded[*Course]
}

// NewStudent constructs a student record able to enroll in at most
// maxCourses courses (0 for unbounded).
func NewStudent(id, studentID int, name, email, password string, maxCourses int) *Student {
	return &Student{
		account:   account{id: id, name: name, email: email, password: password},
		studentID: studentID,
		courses:   NewBounded[*Course](maxCourses),
	}
}

// Role returns RoleStudent.
func (*Student) Role() Role { return RoleStudent }

// StudentID returns the student identifier.
func (s *Student) StudentID() int { return s.studentID }

// EnrolledCount returns the number of enrolled courses.
func (s *Student) EnrolledCount() int { return s.courses.Len() }

// EnrolledAt returns the i-th enrolled course in enrollment order.
func (s *Student) EnrolledAt(i int) *Course { return s.courses.At(i) }

// Courses returns a snapshot of the enrolled courses.
func (s *Student) Courses() []*Course { return s.courses.Items() }

// IsEnrolled reports whether the student is enrolled in c.
func (s *Student) IsEnrolled(c *Course) bool { return c != nil && s.courses.Contains(c) }

// CanEnroll checks whether c fits the enrolled set. Re-enrolling is
// rejected with ErrDuplicate.
func (s *Student) CanEnroll(c *Course) error { return s.courses.CanAdd(c) }

// AsAdmin returns u as an *Admin when its role is RoleAdmin.
func AsAdmin(u User) (*Admin, bool) {
	a, ok := u.(*Admin)
	return a, ok && a != nil
}

// AsFaculty returns u as a *Faculty when its role is RoleFaculty.
func AsFaculty(u User) (*Faculty, bool) {
	f, ok := u.(*Faculty)
	return f, ok && f != nil
}

// AsStudent returns u as a *Student when its role is RoleStudent.
func AsStudent(u User) (*Student, bool) {
	s, ok := u.(*Student)
	return s, ok && s != nil
}

// IsNil reports whether u is nil or a typed nil record pointer.
func IsNil(u User) bool {
	switch v := u.(type) {
	case nil:
		return true
	case *Admin:
		return v == nil
	case *Faculty:
		return v == nil
	case *Student:
		return v == nil
	default:
		return true
	}
}
