package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lms/action"
	"github.com/hupe1980/lms/config"
	"github.com/hupe1980/lms/core"
	"github.com/hupe1980/lms/logging"
	"github.com/hupe1980/lms/registry"
)

// Password is the credential given to every user the builder creates.
const Password = "1234"

// FixedTime is the instant returned by the builder's default clock.
var FixedTime = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

// Campus is a populated registry plus the action service operating on it.
type Campus struct {
	Registry *registry.Registry
	Service  *action.Service
	Admin    *core.Admin
	Faculty  map[string]*core.Faculty
	Students map[string]*core.Student
	Courses  map[string]*core.Course
}

type courseSeed struct {
	name       string
	instructor string
}

// CampusBuilder provides a fluent helper for constructing a Campus in tests.
// Example:
//
//	c := NewCampusBuilder().Faculty("F").Students("S").Course("CS200", "F").Build(t)
//
// Faculty assignment done by the builder writes both sides of the
// relationship directly and emits no notifications, so tests start from an
// empty notification store.
type CampusBuilder struct {
	capacity config.Capacity
	logger   logging.Logger
	faculty  []string
	students []string
	courses  []courseSeed
}

// NewCampusBuilder creates a builder using config.DefaultCapacity.
func NewCampusBuilder() *CampusBuilder {
	return &CampusBuilder{capacity: config.DefaultCapacity, logger: logging.NoOpLogger{}}
}

// Capacity adjusts the ceilings before the registry is built (chainable).
func (b *CampusBuilder) Capacity(fn func(c *config.Capacity)) *CampusBuilder {
	fn(&b.capacity)
	return b
}

// Logger sets the logger shared by registry and service (chainable).
func (b *CampusBuilder) Logger(l logging.Logger) *CampusBuilder { b.logger = l; return b }

// Faculty registers faculty members by name (chainable).
func (b *CampusBuilder) Faculty(names ...string) *CampusBuilder {
	b.faculty = append(b.faculty, names...)
	return b
}

// Students registers students by name (chainable).
func (b *CampusBuilder) Students(names ...string) *CampusBuilder {
	b.students = append(b.students, names...)
	return b
}

// Course creates a course, optionally taught by a faculty member registered
// with Faculty. Pass "" for an unassigned course (chainable).
func (b *CampusBuilder) Course(name, instructor string) *CampusBuilder {
	b.courses = append(b.courses, courseSeed{name: name, instructor: instructor})
	return b
}

// Build creates the registry and service, failing t on any setup error.
func (b *CampusBuilder) Build(t testing.TB) *Campus {
	t.Helper()

	reg := registry.New(func(o *registry.Options) {
		o.Capacity = b.capacity
		o.Clock = func() time.Time { return FixedTime }
		o.Logger = b.logger
	})

	c := &Campus{
		Registry: reg,
		Service:  action.New(reg, func(o *action.Options) { o.Logger = b.logger }),
		Faculty:  map[string]*core.Faculty{},
		Students: map[string]*core.Student{},
		Courses:  map[string]*core.Course{},
	}

	err := reg.Update(func(tx *registry.Tx) error {
		admin, err := tx.CreateAdmin(1, "Admin", "admin@lms.test", "admin")
		if err != nil {
			return err
		}
		c.Admin = admin

		for i, name := range b.faculty {
			f, err := tx.CreateFaculty(10+i, name, Email(name), Password)
			if err != nil {
				return err
			}
			c.Faculty[name] = f
		}

		for i, name := range b.students {
			s, err := tx.CreateStudent(1001+i, name, Email(name), Password)
			if err != nil {
				return err
			}
			c.Students[name] = s
		}

		for _, seed := range b.courses {
			course, err := tx.CreateCourse(seed.name)
			if err != nil {
				return err
			}
			c.Courses[seed.name] = course

			if seed.instructor == "" {
				continue
			}

			f, ok := c.Faculty[seed.instructor]
			require.Truef(t, ok, "unknown instructor %q", seed.instructor)

			if err := tx.AssignFaculty(f, course); err != nil {
				return err
			}
		}

		return nil
	})
	require.NoError(t, err)

	return c
}

// Email derives the login email the builder assigns to name.
func Email(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@lms.test"
}
