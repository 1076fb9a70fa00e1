package infrastructure_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobselect/domain"
	"jobselect/infrastructure"
	"jobselect/testutil"
)

func allow(domain.Job) error { return nil }

func TestJobRepositoryCreateGetList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := infrastructure.NewJobRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "a@x.com", "A")

	first := testutil.CreateJob(t, db, owner, "First")
	second := testutil.CreateJob(t, db, owner, "Second")

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, "a@x.com", got.Owner.Email)
	assert.Equal(t, "2025-01-01", got.LastDate.String())

	jobs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{jobs[0].ID, jobs[1].ID})
	for _, j := range jobs {
		assert.Equal(t, owner.ID, j.Owner.ID)
	}

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepositoryUpdateRunsCheckFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := infrastructure.NewJobRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "a@x.com", "A")
	job := testutil.CreateJob(t, db, owner, "Dev")

	title := "Senior Dev"
	patch := domain.JobPatch{Title: &title}

	_, err := repo.Update(ctx, job.ID, func(domain.Job) error {
		return domain.Forbidden("nope")
	}, patch)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	unchanged, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev", unchanged.Title)

	var seen domain.Job
	updated, err := repo.Update(ctx, job.ID, func(j domain.Job) error {
		seen = j
		return nil
	}, patch)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", seen.Owner.Email)
	assert.Equal(t, "Senior Dev", updated.Title)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, owner.ID, updated.Owner.ID)

	_, err = repo.Update(ctx, uuid.NewString(), allow, patch)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepositoryDeleteTwice(t *testing.T) {
	db := testutil.NewDB(t)
	repo := infrastructure.NewJobRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "a@x.com", "A")
	job := testutil.CreateJob(t, db, owner, "Dev")

	require.NoError(t, repo.Delete(ctx, job.ID, allow))
	assert.ErrorIs(t, repo.Delete(ctx, job.ID, allow), domain.ErrNotFound)

	_, err := repo.Get(ctx, job.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepositoryFindByEmailIsCaseInsensitive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := infrastructure.NewUserRepository(db)
	ctx := context.Background()

	u := domain.User{ID: uuid.NewString(), Email: "Ada@Example.com", Name: "Ada"}
	require.NoError(t, repo.Create(ctx, &u))
	assert.Equal(t, "ada@example.com", u.Email)

	found, err := repo.FindByEmail(ctx, "ADA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, repo.UpdateProfile(ctx, u.ID, "Ada L.", "https://img/ada.png"))
	found, err = repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", found.Name)
	assert.Equal(t, "https://img/ada.png", found.Photo)

	dup := domain.User{ID: uuid.NewString(), Email: "ada@example.com", Name: "Other"}
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrConflict)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
