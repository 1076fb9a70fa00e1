package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"jobselect/domain"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Intake submits applications as multipart forms.
type Intake struct {
	api *API
}

func NewIntake(api *API) *Intake {
	return &Intake{api: api}
}

func (c *Intake) Submit(ctx context.Context, session domain.Session, jobID string, form domain.ApplicationForm, doc domain.Document) (domain.Application, error) {
	if !session.Active() {
		return domain.Application{}, domain.Unauthorized("no active session")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"jobId", jobID},
		{"name", form.Name},
		{"email", form.Email},
		{"location", form.Location},
		{"collegeName", form.CollegeName},
		{"tenthPercentage", form.TenthPercentage},
		{"degreePercentage", form.DegreePercentage},
		{"selectedLanguage", form.SelectedLanguage},
		{"communication", form.Communication},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return domain.Application{}, domain.Internal("encode form", err)
		}
	}
	if len(doc.Data) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename="%s"`, quoteEscaper.Replace(doc.Filename)))
		contentType := doc.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return domain.Application{}, domain.Internal("encode resume", err)
		}
		if _, err := part.Write(doc.Data); err != nil {
			return domain.Application{}, domain.Internal("encode resume", err)
		}
	}
	if err := w.Close(); err != nil {
		return domain.Application{}, domain.Internal("encode form", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        "/applications",
		token:       session.Token,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}
	var app domain.Application
	if err := c.api.do(ctx, r, &app); err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

// ListForJob fetches a job's applications; only the job's owner may.
func (c *Intake) ListForJob(ctx context.Context, session domain.Session, jobID string) ([]domain.ApplicationView, error) {
	if !session.Active() {
		return nil, domain.Unauthorized("no active session")
	}
	var apps []domain.ApplicationView
	err := c.api.do(ctx, request{method: http.MethodGet, path: jobPath(jobID) + "/applications", token: session.Token}, &apps)
	return apps, err
}
