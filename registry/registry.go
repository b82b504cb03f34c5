// Package registry implements the owning store of every entity. It assigns
// identifiers, performs lookups and exposes the ordered query surface used
// for rendering.
//
// All state is guarded by a single RWMutex. Update holds the exclusive lock
// for the whole callback so multi-step mutations (enrollment's two-sided
// update, assignment fan-out) are never partially visible; View holds the
// read lock.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/lms/config"
	"github.com/hupe1980/lms/core"
	"github.com/hupe1980/lms/internal/guard"
	"github.com/hupe1980/lms/logging"
	"github.com/hupe1980/lms/notify"
)

// Identifier bases. Each space grows monotonically from its base and values
// are never reused. The bases carry no meaning beyond readability.
const (
	UserIDBase         = 1
	CourseIDBase       = 100
	AssignmentIDBase   = 1000
	SubmissionIDBase   = 5000
	NotificationIDBase = 9000
)

// ErrTxNotWritable is returned when a factory is called inside View.
var ErrTxNotWritable = errors.New("registry: transaction not writable")

// Options configures a Registry.
type Options struct {
	// Capacity bounds every collection. Defaults to config.DefaultCapacity.
	Capacity config.Capacity

	// Notifications receives fan-out. Defaults to a notify.InMemoryStore sized
	// by Capacity.Notifications.
	Notifications core.NotificationStore

	// Clock stamps submissions and notifications. Defaults to time.Now.
	Clock func() time.Time

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

type counters struct {
	user, course, assignment, submission, notification int
}

// Registry owns all entity collections.
type Registry struct {
	mu sync.RWMutex

	capacity      config.Capacity
	users         *core.Bounded[core.User]
	courses       *core.Bounded[*core.Course]
	assignments   *core.Bounded[*core.Assignment]
	submissions   *core.Bounded[*core.Submission]
	notifications core.NotificationStore

	next   counters
	write  guard.Write
	clock  func() time.Time
	logger logging.Logger
}

// New creates an empty registry with optional overrides.
func New(optFns ...func(o *Options)) *Registry {
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

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Registry{
		capacity:      opts.Capacity,
		users:         core.NewBounded[core.User](opts.Capacity.Users),
		courses:       core.NewBounded[*core.Course](opts.Capacity.Courses),
		assignments:   core.NewBounded[*core.Assignment](opts.Capacity.Assignments),
		submissions:   core.NewBounded[*core.Submission](opts.Capacity.Submissions),
		notifications: opts.Notifications,
		next: counters{
			user:         UserIDBase,
			course:       CourseIDBase,
			assignment:   AssignmentIDBase,
			submission:   SubmissionIDBase,
			notification: NotificationIDBase,
		},
		write:  guard.Issue(),
		clock:  opts.Clock,
		logger: opts.Logger,
	}
}

// Capacity returns the configured ceilings.
func (r *Registry) Capacity() config.Capacity { return r.capacity }

// Notifications returns the notification sink. The store synchronizes its
// own reads, so they do not need the registry lock.
func (r *Registry) Notifications() core.NotificationStore { return r.notifications }

// Update runs fn with exclusive access. Every mutation must happen inside
// Update; fn's error is returned unchanged.
func (r *Registry) Update(fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fn(&Tx{r: r, writable: true})
}

// View runs fn with shared read access.
func (r *Registry) View(fn func(tx *Tx) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return fn(&Tx{r: r})
}

// Authenticate returns the first user whose email matches exactly and whose
// password is equal to password.
func (r *Registry) Authenticate(email, password string) (core.User, error) {
	var u core.User

	err := r.View(func(tx *Tx) error {
		var err error
		u, err = tx.Authenticate(email, password)
		return err
	})

	return u, err
}

// FindUser resolves a user id.
func (r *Registry) FindUser(id int) (core.User, error) {
	var u core.User

	err := r.View(func(tx *Tx) error {
		var err error
		u, err = tx.FindUser(id)
		return err
	})

	return u, err
}

// FindCourse resolves a course id.
func (r *Registry) FindCourse(id int) (*core.Course, error) {
	var c *core.Course

	err := r.View(func(tx *Tx) error {
		var err error
		c, err = tx.FindCourse(id)
		return err
	})

	return c, err
}

// FindAssignment resolves an assignment id.
func (r *Registry) FindAssignment(id int) (*core.Assignment, error) {
	var a *core.Assignment

	err := r.View(func(tx *Tx) error {
		var err error
		a, err = tx.FindAssignment(id)
		return err
	})

	return a, err
}

// FindSubmission resolves a submission id.
func (r *Registry) FindSubmission(id int) (*core.Submission, error) {
	var s *core.Submission

	err := r.View(func(tx *Tx) error {
		var err error
		s, err = tx.FindSubmission(id)
		return err
	})

	return s, err
}

// UserCount returns the number of registered users.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.users.Len()
}

// UserAt returns the i-th user in creation order. It panics when i is
// outside [0, UserCount()).
func (r *Registry) UserAt(i int) core.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.users.At(i)
}

// CourseCount returns the number of courses.
func (r *Registry) CourseCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.courses.Len()
}

// CourseAt returns the i-th course in creation order.
func (r *Registry) CourseAt(i int) *core.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.courses.At(i)
}

// AssignmentCount returns the number of assignments across all courses.
func (r *Registry) AssignmentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.assignments.Len()
}

// AssignmentAt returns the i-th assignment in creation order.
func (r *Registry) AssignmentAt(i int) *core.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.assignments.At(i)
}

// SubmissionCount returns the number of submissions across all assignments.
func (r *Registry) SubmissionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.submissions.Len()
}

// SubmissionAt returns the i-th submission in creation order.
func (r *Registry) SubmissionAt(i int) *core.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.submissions.At(i)
}

// NotificationCount returns the number of delivered notifications.
func (r *Registry) NotificationCount() int { return r.notifications.Count() }

// NotificationAt returns the i-th notification in delivery order.
func (r *Registry) NotificationAt(i int) *core.Notification { return r.notifications.At(i) }

// Inbox returns the notifications received by u in delivery order.
func (r *Registry) Inbox(u core.User) []*core.Notification {
	return r.notifications.Inbox(u)
}
