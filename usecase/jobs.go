package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobselect/domain"
)

type JobStore interface {
	List(ctx context.Context) ([]domain.Job, error)
	Get(ctx context.Context, id string) (domain.Job, error)
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, id string, check func(domain.Job) error, patch domain.JobPatch) (domain.Job, error)
	Delete(ctx context.Context, id string, check func(domain.Job) error) error
}

// JobService is the job repository surface with the authoritative ownership gate.
type JobService struct {
	jobs   JobStore
	logger *zap.Logger
}

func NewJobService(jobs JobStore, logger *zap.Logger) *JobService {
	return &JobService{jobs: jobs, logger: logger}
}

func (s *JobService) List(ctx context.Context) ([]domain.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.List")
	defer span.End()
	return s.jobs.List(ctx)
}

func (s *JobService) Get(ctx context.Context, id string) (domain.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.Get")
	defer span.End()
	return s.jobs.Get(ctx, id)
}

// Create stores a new job owned by the session user. Owner-like input is never consulted.
func (s *JobService) Create(ctx context.Context, session domain.Session, fields domain.JobFields) (domain.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.Create")
	defer span.End()

	if err := requireSession(session); err != nil {
		return domain.Job{}, err
	}
	patch, err := fields.ValidateForCreate()
	if err != nil {
		return domain.Job{}, err
	}

	job := domain.Job{ID: uuid.NewString(), OwnerID: session.User.ID}
	patch.Apply(&job)
	if err := s.jobs.Create(ctx, &job); err != nil {
		span.RecordError(err)
		return domain.Job{}, err
	}

	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("owner_id", job.OwnerID))
	return s.jobs.Get(ctx, job.ID)
}

// Update applies the provided fields if the session user owns the job.
// claim is any owner identity the caller sent along; a claim that does not
// name the recorded owner is a validation error.
func (s *JobService) Update(ctx context.Context, session domain.Session, id string, fields domain.JobFields, claim domain.OwnerClaim) (domain.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.Update")
	defer span.End()

	if err := requireSession(session); err != nil {
		return domain.Job{}, err
	}
	patch, validationErr := fields.ValidateForUpdate()

	job, err := s.jobs.Update(ctx, id, func(current domain.Job) error {
		if !current.OwnedBy(session) {
			return domain.Forbidden("update by non-owner")
		}
		if validationErr != nil {
			return validationErr
		}
		if claim.Present && !claim.Names(current.Owner) {
			return domain.FieldError(domain.KindValidationFailed, "owner", "owner cannot be changed")
		}
		return nil
	}, patch)
	if err != nil {
		s.logRejected("update", id, session, err)
		return domain.Job{}, err
	}

	s.logger.Info("job updated", zap.String("job_id", id))
	return job, nil
}

// Delete removes the job if the session user owns it. A second delete is NotFound.
func (s *JobService) Delete(ctx context.Context, session domain.Session, id string) error {
	ctx, span := tracer.Start(ctx, "JobService.Delete")
	defer span.End()

	if err := requireSession(session); err != nil {
		return err
	}
	err := s.jobs.Delete(ctx, id, func(current domain.Job) error {
		if !current.OwnedBy(session) {
			return domain.Forbidden("delete by non-owner")
		}
		return nil
	})
	if err != nil {
		s.logRejected("delete", id, session, err)
		return err
	}

	s.logger.Info("job deleted", zap.String("job_id", id))
	return nil
}

func (s *JobService) logRejected(op, id string, session domain.Session, err error) {
	if domain.KindOf(err) == domain.KindForbidden {
		s.logger.Warn("job mutation rejected",
			zap.String("op", op),
			zap.String("job_id", id),
			zap.String("user_id", session.User.ID))
	}
}

func requireSession(session domain.Session) error {
	if !session.Active() || session.User.ID == "" {
		return domain.Unauthorized("no active session")
	}
	return nil
}
