// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobselect/config"
	"jobselect/domain"
	"jobselect/infrastructure"
)

// NewDB opens a migrated in-memory SQLite database that is closed with t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := infrastructure.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Config returns a development configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		HTTPAddr:       ":0",
		AppEnv:         "development",
		MaxUploadBytes: 1 << 20,
		DBDriver:       "sqlite",
		DBDSN:          ":memory:",
		JWTSecret:      "test-secret",
		JWTIssuer:      "jobselect-test",
		SessionTTL:     time.Hour,
		Broker:         "none",
	}
}

// CreateUser stores a user with the given email.
func CreateUser(t testing.TB, db *gorm.DB, email, name string) domain.User {
	t.Helper()
	u := domain.User{ID: uuid.NewString(), Email: domain.NormalizeEmail(email), Name: name}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Session returns a session for u with a placeholder token.
func Session(u domain.User) domain.Session {
	return domain.Session{Token: "token-" + u.ID, User: u, IssuedAt: time.Now().UTC()}
}

// CreateJob stores a job owned by owner.
func CreateJob(t testing.TB, db *gorm.DB, owner domain.User, title string) domain.Job {
	t.Helper()
	j := domain.Job{
		ID:          uuid.NewString(),
		Title:       title,
		Company:     "Acme",
		Description: "Build things",
		LastDate:    domain.NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		DriveType:   domain.DriveWalkIn,
		OwnerID:     owner.ID,
	}
	require.NoError(t, db.WithContext(context.Background()).Omit("Owner").Create(&j).Error)
	j.Owner = owner
	return j
}

// PDF is a minimal document that sniffs as application/pdf.
var PDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
