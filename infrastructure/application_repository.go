package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"jobselect/domain"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create stores the application, its resume bytes and a queued extract row in
// one transaction. The job is re-read inside the transaction so a job deleted
// after validation still yields JobNotFound.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application, resume []byte) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Job{}).Where("id = ?", app.JobID).Count(&count).Error; err != nil {
			return domain.Internal("check job", err)
		}
		if count == 0 {
			return domain.NewError(domain.KindJobNotFound, "job not found", nil)
		}

		if err := tx.Create(app).Error; err != nil {
			return domain.Internal("create application", err)
		}
		doc := domain.ApplicationDocument{ApplicationID: app.ID, Data: resume}
		if err := tx.Create(&doc).Error; err != nil {
			return domain.Internal("store resume", err)
		}
		extract := domain.ResumeExtract{ApplicationID: app.ID, Status: domain.ExtractQueued}
		if err := tx.Create(&extract).Error; err != nil {
			return domain.Internal("queue resume extract", err)
		}
		return nil
	})
}

func (r *ApplicationRepository) Get(ctx context.Context, id string) (domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return domain.Application{}, notFound(err, "application")
	}
	return app, nil
}

// ListByJob returns the job's applications oldest first, each with its
// extract state when one exists.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]domain.ApplicationView, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC, id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, domain.Internal("list applications", err)
	}
	if len(apps) == 0 {
		return []domain.ApplicationView{}, nil
	}

	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}
	var extracts []domain.ResumeExtract
	if err := r.db.WithContext(ctx).Where("application_id IN ?", ids).Find(&extracts).Error; err != nil {
		return nil, domain.Internal("list resume extracts", err)
	}
	byApp := make(map[string]*domain.ResumeExtract, len(extracts))
	for i := range extracts {
		byApp[extracts[i].ApplicationID] = &extracts[i]
	}

	views := make([]domain.ApplicationView, len(apps))
	for i, a := range apps {
		views[i] = domain.ApplicationView{Application: a, Extract: byApp[a.ID]}
	}
	return views, nil
}

func (r *ApplicationRepository) Document(ctx context.Context, applicationID string) ([]byte, error) {
	var doc domain.ApplicationDocument
	if err := r.db.WithContext(ctx).First(&doc, "application_id = ?", applicationID).Error; err != nil {
		return nil, notFound(err, "resume")
	}
	return doc.Data, nil
}

func (r *ApplicationRepository) GetExtract(ctx context.Context, applicationID string) (domain.ResumeExtract, error) {
	var extract domain.ResumeExtract
	if err := r.db.WithContext(ctx).First(&extract, "application_id = ?", applicationID).Error; err != nil {
		return domain.ResumeExtract{}, notFound(err, "resume extract")
	}
	return extract, nil
}

// SetExtract updates the extract row's status and, when given, its text or error.
func (r *ApplicationRepository) SetExtract(ctx context.Context, applicationID string, status domain.ExtractStatus, text, failure string) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}
	switch status {
	case domain.ExtractCompleted:
		updates["text"] = text
		updates["char_count"] = len([]rune(text))
		updates["error"] = ""
	case domain.ExtractFailed:
		updates["error"] = failure
	}
	res := r.db.WithContext(ctx).
		Model(&domain.ResumeExtract{}).
		Where("application_id = ?", applicationID).
		Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return domain.NotFound("resume extract not found")
		}
		return domain.Internal("update resume extract", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("resume extract not found")
	}
	return nil
}
