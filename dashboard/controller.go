// Package dashboard drives the job list and edit modal of the recruiter
// dashboard. The displayed list is always a server snapshot: every successful
// mutation is followed by a fresh List rather than a local patch.
package dashboard

import (
	"context"
	"sync"

	"jobselect/client"
	"jobselect/domain"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "idle"
	}
}

// JobSource is the subset of the jobs client the dashboard needs.
type JobSource interface {
	List(ctx context.Context, session domain.Session) ([]domain.Job, error)
	Create(ctx context.Context, session domain.Session, in client.JobInput) (domain.Job, error)
	Update(ctx context.Context, session domain.Session, id string, in client.JobInput) (domain.Job, error)
	Delete(ctx context.Context, session domain.Session, id string) error
}

// EditModal is closed unless Open is set, in which case Draft holds the
// pending changes to JobID.
type EditModal struct {
	Open  bool
	JobID string
	Draft client.JobInput
}

// Notice is a transient message for the user.
type Notice struct {
	Kind    domain.Kind
	Message string
}

// View is a snapshot of the controller state.
type View struct {
	Phase Phase
	Jobs  []domain.Job
	Edit  EditModal
}

type Controller struct {
	jobs   JobSource
	store  *client.SessionStore
	notify func(Notice)

	mu       sync.Mutex
	phase    Phase
	list     []domain.Job
	snapshot bool
	edit     EditModal
	gen      uint64
	detached bool
}

// New returns an idle controller. notify may be nil.
func New(jobs JobSource, store *client.SessionStore, notify func(Notice)) *Controller {
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Controller{jobs: jobs, store: store, notify: notify}
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	jobs := make([]domain.Job, len(c.list))
	copy(jobs, c.list)
	edit := c.edit
	edit.Draft = edit.Draft.Clone()
	return View{Phase: c.phase, Jobs: jobs, Edit: edit}
}

// Detach marks the view as gone. Responses arriving afterwards change nothing
// and raise no notices.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// CanEdit reports whether the current session owns job. It only gates what
// the dashboard offers; the server re-checks every mutation.
func (c *Controller) CanEdit(job domain.Job) bool {
	session, ok := c.store.Get()
	return ok && job.OwnedBy(session)
}

// Load fetches the list. Only the latest Load may update the state; older
// responses are dropped.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.phase = Loading
	c.mu.Unlock()

	session, _ := c.store.Get()
	jobs, err := c.jobs.List(ctx, session)

	c.mu.Lock()
	if c.detached || gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.phase = c.settled()
		c.mu.Unlock()
		c.fail(err)
		return err
	}
	c.phase = Loaded
	c.list = jobs
	c.snapshot = true
	c.mu.Unlock()
	return nil
}

// settled is the phase to fall back to after a failure: the last snapshot
// stays on screen if there is one.
func (c *Controller) settled() Phase {
	if c.snapshot {
		return Loaded
	}
	return Idle
}

func (c *Controller) Create(ctx context.Context, in client.JobInput) error {
	return c.mutate(ctx, func(session domain.Session) error {
		_, err := c.jobs.Create(ctx, session, in)
		return err
	}, nil)
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(session domain.Session) error {
		return c.jobs.Delete(ctx, session, id)
	}, nil)
}

// OpenEdit opens the modal with a draft copied from job.
func (c *Controller) OpenEdit(job domain.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = EditModal{Open: true, JobID: job.ID, Draft: client.InputFromJob(job)}
}

// EditDraft lets the caller change the open draft in place.
func (c *Controller) EditDraft(change func(*client.JobInput)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit.Open {
		change(&c.edit.Draft)
	}
}

func (c *Controller) CloseEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = EditModal{}
}

// SubmitEdit sends a copy of the draft, so edits made while the request is
// in flight do not reach it. The modal closes only on success; on failure the
// draft stays so it can be corrected.
func (c *Controller) SubmitEdit(ctx context.Context) error {
	c.mu.Lock()
	edit := c.edit
	edit.Draft = edit.Draft.Clone()
	c.mu.Unlock()
	if !edit.Open {
		return nil
	}

	return c.mutate(ctx, func(session domain.Session) error {
		_, err := c.jobs.Update(ctx, session, edit.JobID, edit.Draft)
		return err
	}, func() {
		if c.edit.Open && c.edit.JobID == edit.JobID {
			c.edit = EditModal{}
		}
	})
}

// mutate runs op under the current session. On success onSuccess runs with
// the lock held and the list is re-fetched; on failure the last snapshot is
// kept and a notice raised.
func (c *Controller) mutate(ctx context.Context, op func(domain.Session) error, onSuccess func()) error {
	session, ok := c.store.Get()
	if !ok {
		err := domain.Unauthorized("sign in to continue")
		c.fail(err)
		return err
	}

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}
	c.phase = Loading
	c.mu.Unlock()

	err := op(session)

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.phase = c.settled()
		c.mu.Unlock()
		c.fail(err)
		return err
	}
	if onSuccess != nil {
		onSuccess()
	}
	c.mu.Unlock()

	return c.Load(ctx)
}

// fail raises a notice for err. Unauthorized also drops the stored session so
// the user is sent back to sign in.
func (c *Controller) fail(err error) {
	de := domain.AsError(err)
	if de.Kind == domain.KindUnauthorized {
		c.store.Clear()
	}
	c.mu.Lock()
	detached := c.detached
	c.mu.Unlock()
	if detached {
		return
	}
	c.notify(Notice{Kind: de.Kind, Message: de.UserMessage()})
}
