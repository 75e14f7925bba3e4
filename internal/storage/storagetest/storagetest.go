// Package storagetest provides in-memory databases for tests.
package storagetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"filmtrack/internal/config"
	"filmtrack/internal/models"
	"filmtrack/internal/storage"
)

var userSeq atomic.Int64

// NewDB opens a migrated in-memory sqlite database closed at test cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := storage.InitDB(config.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user named name with a unique email.
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()

	u := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s.%d@example.com", name, userSeq.Add(1)),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
