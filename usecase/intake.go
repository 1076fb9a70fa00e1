package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobselect/domain"
)

type JobLookup interface {
	Get(ctx context.Context, id string) (domain.Job, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, app *domain.Application, resume []byte) error
	ListByJob(ctx context.Context, jobID string) ([]domain.ApplicationView, error)
	SetExtract(ctx context.Context, applicationID string, status domain.ExtractStatus, text, failure string) error
}

type EventPublisher interface {
	PublishApplicationSubmitted(ctx context.Context, evt domain.ApplicationSubmitted) error
}

// IntakeService validates and records applications.
type IntakeService struct {
	jobs      JobLookup
	apps      ApplicationStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewIntakeService(jobs JobLookup, apps ApplicationStore, publisher EventPublisher, logger *zap.Logger) *IntakeService {
	return &IntakeService{jobs: jobs, apps: apps, publisher: publisher, logger: logger}
}

// Submit resolves the job, validates the form and document, and stores the
// application. The first failing rule is returned and nothing is stored.
func (s *IntakeService) Submit(ctx context.Context, session domain.Session, jobID string, form domain.ApplicationForm, doc domain.Document) (domain.Application, error) {
	ctx, span := tracer.Start(ctx, "IntakeService.Submit")
	defer span.End()

	if err := requireSession(session); err != nil {
		return domain.Application{}, err
	}
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.Application{}, domain.FieldError(domain.KindJobNotFound, "jobId", "job %q does not exist", jobID)
		}
		return domain.Application{}, err
	}

	app, err := domain.ValidateApplication(form, doc)
	if err != nil {
		return domain.Application{}, err
	}
	app.ID = uuid.NewString()
	app.JobID = jobID
	app.SubmittedByID = session.User.ID

	if err := s.apps.Create(ctx, &app, doc.Data); err != nil {
		span.RecordError(err)
		return domain.Application{}, err
	}
	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("job_id", jobID))

	evt := domain.ApplicationSubmitted{ApplicationID: app.ID, JobID: jobID}
	if err := s.publisher.PublishApplicationSubmitted(ctx, evt); err != nil {
		s.logger.Warn("failed to queue resume extraction",
			zap.String("application_id", app.ID),
			zap.Error(err))
		if err := s.apps.SetExtract(ctx, app.ID, domain.ExtractFailed, "", "could not queue extraction"); err != nil {
			s.logger.Error("failed to mark extract failed", zap.String("application_id", app.ID), zap.Error(err))
		}
	}
	return app, nil
}

// ListForJob returns a job's applications to its owner only.
func (s *IntakeService) ListForJob(ctx context.Context, session domain.Session, jobID string) ([]domain.ApplicationView, error) {
	ctx, span := tracer.Start(ctx, "IntakeService.ListForJob")
	defer span.End()

	if err := requireSession(session); err != nil {
		return nil, err
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(session) {
		return nil, domain.Forbidden("application list by non-owner")
	}
	return s.apps.ListByJob(ctx, jobID)
}
