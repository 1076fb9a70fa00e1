package infrastructure

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobselect/domain"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// List returns every job in creation order with its owner loaded.
func (r *JobRepository) List(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at ASC, id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, domain.Internal("list jobs", err)
	}
	return jobs, nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).Preload("Owner").First(&job, "id = ?", id).Error; err != nil {
		return domain.Job{}, notFound(err, "job")
	}
	return job, nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(job).Error; err != nil {
		return domain.Internal("create job", err)
	}
	return nil
}

// Update locks the row, lets check veto the change against the stored job,
// then writes the patch. Nothing is written when check fails.
func (r *JobRepository) Update(ctx context.Context, id string, check func(domain.Job) error, patch domain.JobPatch) (domain.Job, error) {
	var updated domain.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockJob(tx, id)
		if err != nil {
			return err
		}
		if err := check(job); err != nil {
			return err
		}
		if cols := patch.Columns(); len(cols) > 0 {
			if err := tx.Model(&domain.Job{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return domain.Internal("update job", err)
			}
		}
		if err := tx.Preload("Owner").First(&updated, "id = ?", id).Error; err != nil {
			return notFound(err, "job")
		}
		return nil
	})
	if err != nil {
		return domain.Job{}, err
	}
	return updated, nil
}

// Delete removes the job if check accepts it. Deleting a missing id is NotFound.
func (r *JobRepository) Delete(ctx context.Context, id string, check func(domain.Job) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockJob(tx, id)
		if err != nil {
			return err
		}
		if err := check(job); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Job{})
		if res.Error != nil {
			return domain.Internal("delete job", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("job not found")
		}
		return nil
	})
}

func lockJob(tx *gorm.DB, id string) (domain.Job, error) {
	var job domain.Job
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Owner").
		First(&job, "id = ?", id).Error
	if err != nil {
		return domain.Job{}, notFound(err, "job")
	}
	return job, nil
}
