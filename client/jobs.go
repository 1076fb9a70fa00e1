package client

import (
	"context"
	"net/http"
	"net/url"

	"jobselect/domain"
)

// Jobs is the client side of the job repository. Every call takes the
// session explicitly; mutations without one fail before any request is sent.
type Jobs struct {
	api *API
}

func NewJobs(api *API) *Jobs {
	return &Jobs{api: api}
}

// JobInput is a create or update body. Nil fields are omitted, so an update
// leaves them unchanged.
type JobInput struct {
	Title       *string `json:"title,omitempty"`
	Company     *string `json:"company,omitempty"`
	Description *string `json:"description,omitempty"`
	LastDate    *string `json:"lastDate,omitempty"`
	DriveType   *string `json:"driveType,omitempty"`
}

// Clone returns a copy that shares no pointers with in.
func (in JobInput) Clone() JobInput {
	return JobInput{
		Title:       clonePtr(in.Title),
		Company:     clonePtr(in.Company),
		Description: clonePtr(in.Description),
		LastDate:    clonePtr(in.LastDate),
		DriveType:   clonePtr(in.DriveType),
	}
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// InputFromJob copies a job's editable fields, for example into an edit draft.
func InputFromJob(j domain.Job) JobInput {
	lastDate := j.LastDate.String()
	driveType := j.DriveType.Label()
	return JobInput{
		Title:       &j.Title,
		Company:     &j.Company,
		Description: &j.Description,
		LastDate:    &lastDate,
		DriveType:   &driveType,
	}
}

func (c *Jobs) List(ctx context.Context, session domain.Session) ([]domain.Job, error) {
	var jobs []domain.Job
	err := c.api.do(ctx, request{method: http.MethodGet, path: "/jobs", token: session.Token}, &jobs)
	return jobs, err
}

func (c *Jobs) Get(ctx context.Context, session domain.Session, id string) (domain.Job, error) {
	var job domain.Job
	err := c.api.do(ctx, request{method: http.MethodGet, path: jobPath(id), token: session.Token}, &job)
	return job, err
}

func (c *Jobs) Create(ctx context.Context, session domain.Session, in JobInput) (domain.Job, error) {
	return c.send(ctx, session, http.MethodPost, "/jobs", in)
}

func (c *Jobs) Update(ctx context.Context, session domain.Session, id string, in JobInput) (domain.Job, error) {
	return c.send(ctx, session, http.MethodPut, jobPath(id), in)
}

func (c *Jobs) Delete(ctx context.Context, session domain.Session, id string) error {
	if !session.Active() {
		return domain.Unauthorized("no active session")
	}
	return c.api.do(ctx, request{method: http.MethodDelete, path: jobPath(id), token: session.Token}, nil)
}

func (c *Jobs) send(ctx context.Context, session domain.Session, method, path string, in JobInput) (domain.Job, error) {
	if !session.Active() {
		return domain.Job{}, domain.Unauthorized("no active session")
	}
	r, err := jsonRequest(method, path, session.Token, in)
	if err != nil {
		return domain.Job{}, err
	}
	var job domain.Job
	if err := c.api.do(ctx, r, &job); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

func jobPath(id string) string {
	return "/jobs/" + url.PathEscape(id)
}
