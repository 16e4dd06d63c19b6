// Package testutil provides shared fixtures for tests backed by a real SQLite database.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"captionvote/internal/db"
	"captionvote/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a temp dir. Foreign keys are enforced and
// the pool is a single connection so concurrent tests interleave statements rather
// than fail with SQLITE_BUSY.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := db.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "x"}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// CreateCaptions inserts n captions, one second apart, the newest last.
// Every third caption gets an image.
func CreateCaptions(t testing.TB, conn *gorm.DB, n int) []models.Caption {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	captions := make([]models.Caption, n)
	for i := range captions {
		captions[i] = models.Caption{
			Content:   fmt.Sprintf("caption %03d", i),
			LikeCount: i,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if i%3 == 0 {
			captions[i].Image = &models.Image{URL: fmt.Sprintf("https://img.example/%d.png", i)}
		}
		require.NoError(t, conn.Create(&captions[i]).Error)
	}
	return captions
}
