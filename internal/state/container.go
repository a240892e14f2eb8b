package state

import (
	"fmt"
	"sync"
	"time"
)

// Callback receives the value at a subscribed path after a change.
type Callback func(value any)

// Update pairs a path with its new value. Update batches apply in slice
// order, each entry with its own notification pass.
type Update struct {
	Path  Path
	Value any
}

// Container owns the current Snapshot and the subscriber registry.
// Every Set produces a new Snapshot and notifies, in order, the exact
// path's subscribers and then each strict ancestor's, before returning.
//
// The elapsed-time ticker runs on its own goroutine, so access is
// mutex-guarded; notification still happens synchronously inside Set,
// and a callback calling Set starts a fresh, independent operation on
// the already-updated snapshot.
type Container struct {
	mu     sync.Mutex
	snap   *Snapshot
	subs   map[Path][]subscriber
	nextID int
}

type subscriber struct {
	id int
	fn Callback
}

// New creates a Container with empty defaults: no user, quiz mode
// "quiz", login screen.
func New() *Container {
	return &Container{
		snap: emptySnapshot(),
		subs: make(map[Path][]subscriber),
	}
}

// Current returns an independent copy of the current snapshot.
func (c *Container) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.snap.clone()
}

// Get returns the value at path, or nil when the path is unknown.
func (c *Container) Get(path Path) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	spec, ok := pathSpecs[path]
	if !ok {
		return nil
	}
	return spec.get(c.snap)
}

// Set replaces the value at path in a fresh snapshot, then runs all
// notifications before returning. An unknown path or a value of the
// wrong type leaves the state untouched.
func (c *Container) Set(path Path, value any) error {
	c.mu.Lock()

	spec, ok := pathSpecs[path]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("state: unknown path %q", path)
	}

	next := c.snap.clone()
	if !spec.set(next, value) {
		c.mu.Unlock()
		return fmt.Errorf("state: wrong value type %T for path %q", value, path)
	}
	c.snap = next

	notifs := c.collectNotifications(path)
	c.mu.Unlock()

	for _, n := range notifs {
		n.fn(n.value)
	}
	return nil
}

type notification struct {
	fn    Callback
	value any
}

// collectNotifications gathers the callbacks to run for a change at
// path: exact subscribers first, then ancestors from most specific to
// root, each with its current (post-update) value. Caller holds mu.
func (c *Container) collectNotifications(path Path) []notification {
	var out []notification
	appendFor := func(p Path) {
		subs := c.subs[p]
		if len(subs) == 0 {
			return
		}
		value := pathSpecs[p].get(c.snap)
		for _, s := range subs {
			out = append(out, notification{fn: s.fn, value: value})
		}
	}

	appendFor(path)
	for _, anc := range path.ancestors() {
		appendFor(anc)
	}
	return out
}

// Apply runs each update via Set, in order. The first failure stops the
// batch and is returned.
func (c *Container) Apply(updates []Update) error {
	for _, u := range updates {
		if err := c.Set(u.Path, u.Value); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a callback for changes at path and returns a
// function that removes exactly this registration.
func (c *Container) Subscribe(path Path, fn Callback) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs[path] = append(c.subs[path], subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.subs[path]
		for i, s := range subs {
			if s.id == id {
				c.subs[path] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Login populates the user subtree.
func (c *Container) Login(u User) error {
	return c.Apply([]Update{
		{PathUserID, u.ID},
		{PathUserUsername, u.Username},
		{PathUserEmail, u.Email},
		{PathUserAuthenticated, true},
	})
}

// Logout clears the user subtree, then the selection and quiz session.
func (c *Container) Logout() error {
	if err := c.Apply([]Update{
		{PathUserID, ""},
		{PathUserUsername, ""},
		{PathUserEmail, ""},
		{PathUserAuthenticated, false},
	}); err != nil {
		return err
	}
	if err := c.ResetSelection(); err != nil {
		return err
	}
	return c.ResetQuizSession()
}

// ResetQuizSession clears the per-attempt quiz and session state.
// The loaded question list and mode are left alone.
func (c *Container) ResetQuizSession() error {
	return c.Apply([]Update{
		{PathQuizCurrentIndex, 0},
		{PathQuizStartTime, time.Time{}},
		{PathQuizElapsedSeconds, 0},
		{PathSessionAnswers, map[int]int{}},
		{PathSessionConfirmed, map[int]bool{}},
		{PathSessionStatuses, map[int]Status{}},
		{PathSessionCorrectCount, 0},
		{PathSessionIncorrectCount, 0},
	})
}

// ResetSelection clears the content selection.
func (c *Container) ResetSelection() error {
	return c.Apply([]Update{
		{PathSelectionSpecialty, ""},
		{PathSelectionSubcategory, ""},
		{PathSelectionModule, ""},
	})
}
