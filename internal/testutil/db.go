// Package testutil provides fixtures shared by repository, service and handler tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema migrated.
// A single connection serialises access so concurrent tests behave like row locks.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// CreateUser inserts a user whose username and email derive from name
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateCollection inserts a collection owned by ownerID
func CreateCollection(t testing.TB, db *gorm.DB, ownerID uint, title string, public bool) *models.Collection {
	t.Helper()
	c := &models.Collection{
		UserID:   ownerID,
		Title:    title,
		Slug:     fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		IsPublic: public,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateVideo inserts a video with the given YouTube id
func CreateVideo(t testing.TB, db *gorm.DB, youtubeID, title string) *models.Video {
	t.Helper()
	v := &models.Video{YouTubeID: youtubeID, Title: title}
	require.NoError(t, db.Create(v).Error)
	return v
}

// Follow makes follower follow following
func Follow(t testing.TB, db *gorm.DB, follower, following uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: follower, FollowingID: following}).Error)
}
