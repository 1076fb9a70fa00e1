package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobselect/domain"
	"jobselect/infrastructure"
	"jobselect/testutil"
)

type recordingPublisher struct {
	events []domain.ApplicationSubmitted
	err    error
}

func (p *recordingPublisher) PublishApplicationSubmitted(_ context.Context, evt domain.ApplicationSubmitted) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

type intakeFixture struct {
	svc       *IntakeService
	apps      *infrastructure.ApplicationRepository
	publisher *recordingPublisher
	db        *gorm.DB
}

func newIntake(t *testing.T) intakeFixture {
	t.Helper()
	db := testutil.NewDB(t)
	apps := infrastructure.NewApplicationRepository(db)
	publisher := &recordingPublisher{}
	svc := NewIntakeService(infrastructure.NewJobRepository(db), apps, publisher, zap.NewNop())
	return intakeFixture{svc: svc, apps: apps, publisher: publisher, db: db}
}

func validForm() domain.ApplicationForm {
	return domain.ApplicationForm{
		Name:             "Ada",
		Email:            "ada@example.com",
		Location:         "Chennai",
		CollegeName:      "Anna University",
		TenthPercentage:  "92.5",
		DegreePercentage: "81",
		SelectedLanguage: "Python",
		Communication:    "8",
	}
}

func pdfDoc() domain.Document {
	return domain.Document{Filename: "cv.pdf", ContentType: "application/pdf", Data: testutil.PDF}
}

func countApplications(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Application{}).Count(&n).Error)
	return n
}

func TestSubmitStoresApplicationAndQueuesExtraction(t *testing.T) {
	f := newIntake(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "a@x.com", "A")
	applicant := testutil.Session(testutil.CreateUser(t, f.db, "ada@example.com", "Ada"))
	job := testutil.CreateJob(t, f.db, owner, "Dev")

	app, err := f.svc.Submit(ctx, applicant, job.ID, validForm(), pdfDoc())
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, job.ID, app.JobID)
	assert.Equal(t, applicant.User.ID, app.SubmittedByID)
	assert.Equal(t, 92.5, app.TenthPercentage)
	assert.Equal(t, domain.LanguagePython, app.SelectedLanguage)
	assert.Equal(t, "application/pdf", app.ResumeContentType)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.ApplicationSubmitted{ApplicationID: app.ID, JobID: job.ID}, f.publisher.events[0])

	extract, err := f.apps.GetExtract(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExtractQueued, extract.Status)
}

func TestSubmitToMissingJob(t *testing.T) {
	f := newIntake(t)
	applicant := testutil.Session(testutil.CreateUser(t, f.db, "ada@example.com", "Ada"))

	_, err := f.svc.Submit(context.Background(), applicant, uuid.NewString(), validForm(), pdfDoc())
	require.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.Equal(t, "jobId", domain.AsError(err).Field)
	assert.Zero(t, countApplications(t, f.db))
	assert.Empty(t, f.publisher.events)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	f := newIntake(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "a@x.com", "A")
	applicant := testutil.Session(testutil.CreateUser(t, f.db, "ada@example.com", "Ada"))
	job := testutil.CreateJob(t, f.db, owner, "Dev")

	tests := []struct {
		name  string
		edit  func(*domain.ApplicationForm, *domain.Document)
		want  *domain.Error
		field string
	}{
		{"tenth above range", func(f *domain.ApplicationForm, _ *domain.Document) { f.TenthPercentage = "101" }, domain.ErrOutOfRange, "tenthPercentage"},
		{"communication zero", func(f *domain.ApplicationForm, _ *domain.Document) { f.Communication = "0" }, domain.ErrOutOfRange, "communication"},
		{"unknown language", func(f *domain.ApplicationForm, _ *domain.Document) { f.SelectedLanguage = "Cobol" }, domain.ErrInvalidChoice, "selectedLanguage"},
		{"missing resume", func(_ *domain.ApplicationForm, d *domain.Document) { *d = domain.Document{} }, domain.ErrUnsupportedDocument, "resume"},
		{"text as pdf", func(_ *domain.ApplicationForm, d *domain.Document) { d.Data = []byte("plain text") }, domain.ErrUnsupportedDocument, "resume"},
		{"first failing rule wins", func(f *domain.ApplicationForm, d *domain.Document) {
			f.DegreePercentage = "-5"
			f.Communication = "11"
			*d = domain.Document{}
		}, domain.ErrOutOfRange, "degreePercentage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, doc := validForm(), pdfDoc()
			tt.edit(&form, &doc)

			_, err := f.svc.Submit(ctx, applicant, job.ID, form, doc)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.field, domain.AsError(err).Field)
		})
	}
	assert.Zero(t, countApplications(t, f.db))
}

func TestSubmitAcceptsBoundaryValues(t *testing.T) {
	f := newIntake(t)
	owner := testutil.CreateUser(t, f.db, "a@x.com", "A")
	applicant := testutil.Session(testutil.CreateUser(t, f.db, "ada@example.com", "Ada"))
	job := testutil.CreateJob(t, f.db, owner, "Dev")

	form := validForm()
	form.TenthPercentage = "0"
	form.DegreePercentage = "100"
	form.Communication = "10"
	app, err := f.svc.Submit(context.Background(), applicant, job.ID, form, pdfDoc())
	require.NoError(t, err)
	assert.Equal(t, 0.0, app.TenthPercentage)
	assert.Equal(t, 100.0, app.DegreePercentage)
	assert.Equal(t, 10, app.Communication)
}

func TestSubmitRequiresSession(t *testing.T) {
	f := newIntake(t)

	_, err := f.svc.Submit(context.Background(), domain.Session{}, uuid.NewString(), validForm(), pdfDoc())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSubmitMarksExtractFailedWhenQueueIsDown(t *testing.T) {
	f := newIntake(t)
	ctx := context.Background()
	f.publisher.err = errors.New("broker unreachable")
	owner := testutil.CreateUser(t, f.db, "a@x.com", "A")
	applicant := testutil.Session(testutil.CreateUser(t, f.db, "ada@example.com", "Ada"))
	job := testutil.CreateJob(t, f.db, owner, "Dev")

	app, err := f.svc.Submit(ctx, applicant, job.ID, validForm(), pdfDoc())
	require.NoError(t, err)

	extract, err := f.apps.GetExtract(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExtractFailed, extract.Status)
	assert.Equal(t, "could not queue extraction", extract.Error)
}

func TestListForJobIsOwnerOnly(t *testing.T) {
	f := newIntake(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "a@x.com", "A")
	applicant := testutil.Session(testutil.CreateUser(t, f.db, "ada@example.com", "Ada"))
	job := testutil.CreateJob(t, f.db, owner, "Dev")

	empty, err := f.svc.ListForJob(ctx, testutil.Session(owner), job.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.svc.Submit(ctx, applicant, job.ID, validForm(), pdfDoc())
	require.NoError(t, err)

	views, err := f.svc.ListForJob(ctx, testutil.Session(owner), job.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Ada", views[0].Name)

	_, err = f.svc.ListForJob(ctx, applicant, job.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
