package action_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lms/action"
	"github.com/hupe1980/lms/config"
	"github.com/hupe1980/lms/core"
	"github.com/hupe1980/lms/internal/testutil"
	"github.com/hupe1980/lms/logging"
	"github.com/hupe1980/lms/registry"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, args ...any) { m.Called(msg, args) }
func (m *mockLogger) Info(msg string, args ...any)  { m.Called(msg, args) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.Called(msg, args) }
func (m *mockLogger) Error(msg string, args ...any) { m.Called(msg, args) }

func messages(ns []*core.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}

	return out
}

func TestService_SemesterScenario(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S").Build(t)
	svc := c.Service
	f, s := c.Faculty["F"], c.Students["S"]

	course, err := svc.CreateCourse(c.Admin, "CS200")
	require.NoError(t, err)
	assert.Equal(t, registry.CourseIDBase, course.ID())
	assert.Nil(t, course.Faculty())

	require.NoError(t, svc.AssignFaculty(c.Admin, course.ID(), f))
	afterAssign := c.Registry.NotificationCount()
	require.Equal(t, 1, afterAssign)

	require.NoError(t, svc.Enroll(s, course.ID()))
	assert.Equal(t, 1, s.EnrolledCount())
	assert.Equal(t, 1, course.StudentCount())

	a, err := svc.PostAssignment(f, course.ID(), "A1", "Implement classes", "2025-12-20")
	require.NoError(t, err)
	assert.Equal(t, registry.AssignmentIDBase, a.ID())

	sub, err := svc.Submit(s, a.ID(), "a1.pdf")
	require.NoError(t, err)
	assert.Equal(t, registry.SubmissionIDBase, sub.ID())
	assert.Equal(t, testutil.FixedTime, sub.SubmittedAt())

	require.NoError(t, svc.Grade(f, sub.ID(), 85))
	assert.Equal(t, core.StatusGraded, sub.Status())
	assert.Equal(t, 85.0, sub.Grade())

	reg := c.Registry
	// enroll, post, submit, grade
	require.Equal(t, 4, reg.NotificationCount()-afterAssign)

	assert.Equal(t, []string{
		"You have been assigned to course: CS200",
		"S enrolled in CS200",
		"New submission for: A1 by S",
	}, messages(reg.Inbox(f)))

	assert.Equal(t, []string{
		"New assignment posted: A1 in CS200",
		"Your submission graded (A1): 85",
	}, messages(reg.Inbox(s)))

	for i := 0; i < reg.NotificationCount(); i++ {
		assert.Equal(t, registry.NotificationIDBase+i, reg.NotificationAt(i).ID)
	}
}

func TestService_SubmitDuplicateRejected(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S").Course("CS200", "F").Build(t)
	svc, f, s, course := c.Service, c.Faculty["F"], c.Students["S"], c.Courses["CS200"]

	require.NoError(t, svc.Enroll(s, course.ID()))
	a, err := svc.PostAssignment(f, course.ID(), "A1", "", "2025-12-20")
	require.NoError(t, err)

	first, err := svc.Submit(s, a.ID(), "a1.pdf")
	require.NoError(t, err)
	before := c.Registry.NotificationCount()

	_, err = svc.Submit(s, a.ID(), "a1-final.pdf")
	assert.Equal(t, core.KindDuplicate, core.KindOf(err))

	assert.Equal(t, 1, a.SubmissionCount())
	assert.Equal(t, "a1.pdf", first.FilePath())
	assert.Equal(t, 1, c.Registry.SubmissionCount())
	assert.Equal(t, before, c.Registry.NotificationCount())
}

func TestService_SubmitRequiresEnrollment(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S").Course("CS200", "F").Build(t)
	svc, f, s, course := c.Service, c.Faculty["F"], c.Students["S"], c.Courses["CS200"]

	a, err := svc.PostAssignment(f, course.ID(), "A1", "", "")
	require.NoError(t, err)

	_, err = svc.Submit(s, a.ID(), "a1.pdf")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))
	assert.Equal(t, 0, a.SubmissionCount())
	assert.Equal(t, 0, c.Registry.NotificationCount())

	_, err = svc.Submit(s, 4242, "a1.pdf")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestService_GradeRequiresInstructor(t *testing.T) {
	c := testutil.NewCampusBuilder().
		Faculty("F", "G").
		Students("S").
		Course("CS200", "F").
		Build(t)
	svc, f, g, s, course := c.Service, c.Faculty["F"], c.Faculty["G"], c.Students["S"], c.Courses["CS200"]

	require.NoError(t, svc.Enroll(s, course.ID()))
	a, err := svc.PostAssignment(f, course.ID(), "A1", "", "")
	require.NoError(t, err)
	sub, err := svc.Submit(s, a.ID(), "a1.pdf")
	require.NoError(t, err)
	before := c.Registry.NotificationCount()

	err = svc.Grade(g, sub.ID(), 99)
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))
	assert.Equal(t, core.StatusSubmitted, sub.Status())
	assert.Zero(t, sub.Grade())
	assert.Equal(t, before, c.Registry.NotificationCount())

	err = svc.Grade(f, 4242, 99)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestService_RegradeOverwrites(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S").Course("CS200", "F").Build(t)
	svc, f, s, course := c.Service, c.Faculty["F"], c.Students["S"], c.Courses["CS200"]

	require.NoError(t, svc.Enroll(s, course.ID()))
	a, _ := svc.PostAssignment(f, course.ID(), "A1", "", "")
	sub, _ := svc.Submit(s, a.ID(), "a1.pdf")

	require.NoError(t, svc.Grade(f, sub.ID(), 70))
	require.NoError(t, svc.Grade(f, sub.ID(), -3.5))

	assert.Equal(t, -3.5, sub.Grade())
	assert.Equal(t, core.StatusGraded, sub.Status())
	assert.Equal(t, []string{
		"New assignment posted: A1 in CS200",
		"Your submission graded (A1): 70",
		"Your submission graded (A1): -3.5",
	}, messages(c.Registry.Inbox(s)))
}

func TestService_PostAssignmentRequiresInstructor(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F", "G").Course("CS200", "F").Course("CS300", "").Build(t)
	svc, g := c.Service, c.Faculty["G"]

	_, err := svc.PostAssignment(g, c.Courses["CS200"].ID(), "A1", "", "")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	// unassigned course
	_, err = svc.PostAssignment(g, c.Courses["CS300"].ID(), "A1", "", "")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	_, err = svc.PostAssignment(g, 4242, "A1", "", "")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	assert.Equal(t, 0, c.Registry.AssignmentCount())
}

func TestService_PostAssignmentFanOutOrder(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S1", "S2", "S3").Course("CS200", "F").Build(t)
	svc, course := c.Service, c.Courses["CS200"]

	for _, name := range []string{"S3", "S1", "S2"} {
		require.NoError(t, svc.Enroll(c.Students[name], course.ID()))
	}
	before := c.Registry.NotificationCount()

	_, err := svc.PostAssignment(c.Faculty["F"], course.ID(), "A1", "", "")
	require.NoError(t, err)

	reg := c.Registry
	require.Equal(t, before+3, reg.NotificationCount())

	batch := reg.NotificationAt(before).BatchID
	for i, name := range []string{"S3", "S1", "S2"} {
		n := reg.NotificationAt(before + i)
		assert.Same(t, c.Students[name], n.Receiver)
		assert.Equal(t, batch, n.BatchID)
		assert.Equal(t, c.Faculty["F"].ID(), n.SenderID())
	}
}

func TestService_PostAssignmentWithoutStudents(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Course("CS200", "F").Build(t)

	a, err := c.Service.PostAssignment(c.Faculty["F"], c.Courses["CS200"].ID(), "A1", "", "")
	require.NoError(t, err)

	assert.Same(t, a, c.Courses["CS200"].AssignmentAt(0))
	assert.Equal(t, 0, c.Registry.NotificationCount())
}

func TestService_EnrollSymmetry(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S").Course("CS200", "F").Course("CS300", "").Build(t)
	svc, s := c.Service, c.Students["S"]
	cs200, cs300 := c.Courses["CS200"], c.Courses["CS300"]

	require.NoError(t, svc.Enroll(s, cs200.ID()))
	require.NoError(t, svc.Enroll(s, cs300.ID()))

	assert.True(t, cs200.HasStudent(s))
	assert.True(t, s.IsEnrolled(cs200))
	assert.Equal(t, []*core.Course{cs200, cs300}, s.Courses())

	// unassigned course produces no notification
	assert.Equal(t, []string{"S enrolled in CS200"}, messages(c.Registry.Inbox(c.Faculty["F"])))
	assert.Equal(t, 1, c.Registry.NotificationCount())

	err := svc.Enroll(s, cs200.ID())
	assert.Equal(t, core.KindDuplicate, core.KindOf(err))
	assert.Equal(t, 1, cs200.StudentCount())
	assert.Equal(t, 2, s.EnrolledCount())

	err = svc.Enroll(s, 4242)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestService_EnrollCapacity(t *testing.T) {
	t.Run("course full", func(t *testing.T) {
		c := testutil.NewCampusBuilder().
			Capacity(func(limits *config.Capacity) { limits.CourseStudents = 1 }).
			Students("S1", "S2").
			Course("CS200", "").
			Build(t)
		course, s2 := c.Courses["CS200"], c.Students["S2"]

		require.NoError(t, c.Service.Enroll(c.Students["S1"], course.ID()))

		err := c.Service.Enroll(s2, course.ID())
		assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))
		assert.Equal(t, 1, course.StudentCount())
		assert.Equal(t, 0, s2.EnrolledCount())
	})

	t.Run("student full", func(t *testing.T) {
		c := testutil.NewCampusBuilder().
			Capacity(func(limits *config.Capacity) { limits.StudentCourses = 1 }).
			Students("S").
			Course("CS200", "").
			Course("CS300", "").
			Build(t)
		s, cs300 := c.Students["S"], c.Courses["CS300"]

		require.NoError(t, c.Service.Enroll(s, c.Courses["CS200"].ID()))

		err := c.Service.Enroll(s, cs300.ID())
		assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))
		assert.Equal(t, 0, cs300.StudentCount())
		assert.Equal(t, 1, s.EnrolledCount())
	})
}

func TestService_PostAssignmentCapacity(t *testing.T) {
	t.Run("course ceiling", func(t *testing.T) {
		c := testutil.NewCampusBuilder().
			Capacity(func(limits *config.Capacity) { limits.CourseAssignments = 1 }).
			Faculty("F").
			Students("S1", "S2").
			Course("CS200", "F").
			Build(t)
		svc, f, course := c.Service, c.Faculty["F"], c.Courses["CS200"]

		require.NoError(t, svc.Enroll(c.Students["S1"], course.ID()))
		require.NoError(t, svc.Enroll(c.Students["S2"], course.ID()))
		_, err := svc.PostAssignment(f, course.ID(), "A1", "", "")
		require.NoError(t, err)
		before := c.Registry.NotificationCount()

		_, err = svc.PostAssignment(f, course.ID(), "A2", "", "")
		assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))

		assert.Equal(t, 1, course.AssignmentCount())
		assert.Equal(t, 1, c.Registry.AssignmentCount())
		assert.Equal(t, before, c.Registry.NotificationCount())
	})

	t.Run("registry ceiling", func(t *testing.T) {
		c := testutil.NewCampusBuilder().
			Capacity(func(limits *config.Capacity) { limits.Assignments = 1 }).
			Faculty("F").
			Students("S1", "S2").
			Course("CS200", "F").
			Course("CS300", "F").
			Build(t)
		svc, f, cs300 := c.Service, c.Faculty["F"], c.Courses["CS300"]

		require.NoError(t, svc.Enroll(c.Students["S1"], cs300.ID()))
		require.NoError(t, svc.Enroll(c.Students["S2"], cs300.ID()))
		_, err := svc.PostAssignment(f, c.Courses["CS200"].ID(), "A1", "", "")
		require.NoError(t, err)
		before := c.Registry.NotificationCount()

		_, err = svc.PostAssignment(f, cs300.ID(), "A2", "", "")
		assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))

		assert.Equal(t, 0, cs300.AssignmentCount())
		assert.Equal(t, 1, c.Registry.AssignmentCount())
		assert.Equal(t, before, c.Registry.NotificationCount())
	})
}

func TestService_SubmitCapacity(t *testing.T) {
	tests := []struct {
		name   string
		limits func(limits *config.Capacity)
	}{
		{"registry ceiling", func(limits *config.Capacity) { limits.Submissions = 1 }},
		{"assignment ceiling", func(limits *config.Capacity) { limits.AssignmentSubmissions = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.NewCampusBuilder().
				Capacity(tt.limits).
				Faculty("F").
				Students("S1", "S2").
				Course("CS200", "F").
				Build(t)
			svc, f, course := c.Service, c.Faculty["F"], c.Courses["CS200"]
			s1, s2 := c.Students["S1"], c.Students["S2"]

			require.NoError(t, svc.Enroll(s1, course.ID()))
			require.NoError(t, svc.Enroll(s2, course.ID()))
			a, err := svc.PostAssignment(f, course.ID(), "A1", "", "")
			require.NoError(t, err)

			_, err = svc.Submit(s1, a.ID(), "s1.pdf")
			require.NoError(t, err)
			before := c.Registry.NotificationCount()

			_, err = svc.Submit(s2, a.ID(), "s2.pdf")
			assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))

			assert.Equal(t, 1, a.SubmissionCount())
			assert.Equal(t, 1, c.Registry.SubmissionCount())
			assert.Equal(t, before, c.Registry.NotificationCount())

			_, ok := a.SubmissionBy(s2)
			assert.False(t, ok)
		})
	}
}

func TestService_AssignFaculty(t *testing.T) {
	t.Run("reassignment moves the course", func(t *testing.T) {
		c := testutil.NewCampusBuilder().Faculty("F", "G").Course("CS200", "F").Build(t)
		f, g, course := c.Faculty["F"], c.Faculty["G"], c.Courses["CS200"]

		require.NoError(t, c.Service.AssignFaculty(c.Admin, course.ID(), g))

		assert.Same(t, g, course.Faculty())
		assert.True(t, g.Teaches(course))
		assert.False(t, f.Teaches(course))
		assert.Equal(t, []string{"You have been assigned to course: CS200"}, messages(c.Registry.Inbox(g)))
		assert.Empty(t, c.Registry.Inbox(f))
	})

	t.Run("repeat assignment is idempotent", func(t *testing.T) {
		c := testutil.NewCampusBuilder().Faculty("F").Course("CS200", "").Build(t)
		f, course := c.Faculty["F"], c.Courses["CS200"]

		require.NoError(t, c.Service.AssignFaculty(c.Admin, course.ID(), f))
		require.NoError(t, c.Service.AssignFaculty(c.Admin, course.ID(), f))

		assert.Equal(t, 1, f.AssignedCount())
		assert.Len(t, c.Registry.Inbox(f), 2)
	})

	t.Run("faculty at capacity", func(t *testing.T) {
		c := testutil.NewCampusBuilder().
			Capacity(func(limits *config.Capacity) { limits.FacultyCourses = 1 }).
			Faculty("F").
			Course("CS200", "F").
			Course("CS300", "").
			Build(t)
		f, cs300 := c.Faculty["F"], c.Courses["CS300"]

		err := c.Service.AssignFaculty(c.Admin, cs300.ID(), f)
		assert.Equal(t, core.KindCapacityExceeded, core.KindOf(err))
		assert.Nil(t, cs300.Faculty())
		assert.Equal(t, 1, f.AssignedCount())
		assert.Equal(t, 0, c.Registry.NotificationCount())
	})

	t.Run("unknown course", func(t *testing.T) {
		c := testutil.NewCampusBuilder().Faculty("F").Build(t)

		err := c.Service.AssignFaculty(c.Admin, 4242, c.Faculty["F"])
		assert.Equal(t, core.KindNotFound, core.KindOf(err))
	})
}

func TestService_RejectsMissingOrForeignActors(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S").Course("CS200", "F").Build(t)
	other := testutil.NewCampusBuilder().Faculty("F").Students("S").Build(t)
	svc, course := c.Service, c.Courses["CS200"]

	_, err := svc.CreateCourse(nil, "X")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	_, err = svc.CreateCourse(other.Admin, "X")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	err = svc.AssignFaculty(nil, course.ID(), c.Faculty["F"])
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	err = svc.AssignFaculty(c.Admin, course.ID(), nil)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	err = svc.AssignFaculty(c.Admin, course.ID(), other.Faculty["F"])
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	err = svc.Enroll(nil, course.ID())
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	err = svc.Enroll(other.Students["S"], course.ID())
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	_, err = svc.PostAssignment(nil, course.ID(), "A1", "", "")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	_, err = svc.Submit(nil, registry.AssignmentIDBase, "a.pdf")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	err = svc.Grade(nil, registry.SubmissionIDBase, 1)
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))

	assert.Equal(t, 1, c.Registry.CourseCount())
	assert.Equal(t, 0, course.StudentCount())
	assert.Same(t, c.Faculty["F"], course.Faculty())
	assert.Equal(t, 0, c.Registry.NotificationCount())
}

func TestService_NotificationsBestEffort(t *testing.T) {
	log := &mockLogger{}
	log.On("Debug", mock.Anything, mock.Anything).Maybe()
	log.On("Info", "Action completed", mock.Anything)
	log.On("Warn", "Notification dropped", mock.Anything).Once()

	c := testutil.NewCampusBuilder().
		Capacity(func(limits *config.Capacity) { limits.Notifications = 1 }).
		Logger(log).
		Faculty("F").
		Students("S1", "S2").
		Course("CS200", "F").
		Build(t)
	svc, course := c.Service, c.Courses["CS200"]

	require.NoError(t, svc.Enroll(c.Students["S1"], course.ID()))
	require.Equal(t, 1, c.Registry.NotificationCount())

	// store is full; the enrollment itself must still succeed
	require.NoError(t, svc.Enroll(c.Students["S2"], course.ID()))
	assert.True(t, course.HasStudent(c.Students["S2"]))
	assert.Equal(t, 1, c.Registry.NotificationCount())

	log.AssertExpectations(t)
	log.AssertNumberOfCalls(t, "Warn", 1)
}

func TestService_LogsRejections(t *testing.T) {
	log := &mockLogger{}
	log.On("Debug", mock.Anything, mock.Anything).Maybe()
	log.On("Warn", "Action rejected", mock.MatchedBy(func(args []any) bool {
		for i := 0; i+1 < len(args); i += 2 {
			if args[i] == "kind" && args[i+1] == core.KindUnauthorized.String() {
				return true
			}
		}
		return false
	})).Once()

	c := testutil.NewCampusBuilder().Logger(log).Students("S").Build(t)

	_, err := c.Service.CreateCourse(nil, "X")
	require.Error(t, err)

	log.AssertExpectations(t)
	log.AssertNotCalled(t, "Info", "Action completed", mock.Anything)
}

func TestService_Login(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("Dr Ahmed").Build(t)

	u, err := c.Service.Login(testutil.Email("Dr Ahmed"), testutil.Password)
	require.NoError(t, err)

	f, ok := core.AsFaculty(u)
	require.True(t, ok)
	assert.Same(t, c.Faculty["Dr Ahmed"], f)

	_, err = c.Service.Login(testutil.Email("Dr Ahmed"), "wrong")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestService_BatchSharedAcrossOneAction(t *testing.T) {
	c := testutil.NewCampusBuilder().Faculty("F").Students("S1", "S2").Course("CS200", "F").Build(t)
	svc, course := c.Service, c.Courses["CS200"]

	require.NoError(t, svc.Enroll(c.Students["S1"], course.ID()))
	require.NoError(t, svc.Enroll(c.Students["S2"], course.ID()))

	reg := c.Registry
	assert.NotEqual(t, reg.NotificationAt(0).BatchID, reg.NotificationAt(1).BatchID)
	assert.NotEmpty(t, reg.NotificationAt(0).BatchID)
}

func TestNew_NilLoggerFallsBack(t *testing.T) {
	reg := registry.New()
	svc := action.New(reg, func(o *action.Options) { o.Logger = nil })

	assert.Same(t, reg, svc.Registry())

	_, err := svc.CreateCourse(nil, "X")
	assert.Equal(t, core.KindUnauthorized, core.KindOf(err))
}

func TestService_LogsActorContext(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json", Output: &buf})

	c := testutil.NewCampusBuilder().Logger(l).Faculty("F").Students("S").Course("CS200", "F").Build(t)
	buf.Reset()

	s := c.Students["S"]
	require.NoError(t, c.Service.Enroll(s, c.Courses["CS200"].ID()))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))

	assert.Equal(t, "Action completed", entry["msg"])
	assert.Equal(t, "enroll", entry["operation"])
	assert.Equal(t, float64(s.ID()), entry["actor_id"])
	assert.Equal(t, core.RoleStudent.String(), entry["actor_role"])
	assert.NotEmpty(t, entry["correlation_id"])
	assert.Equal(t, c.Registry.NotificationAt(0).BatchID, entry["correlation_id"])
}
