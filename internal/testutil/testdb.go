package testutil

import (
	"testing"
	"time"

	"chat-realtime-api/internal/database"
	"chat-realtime-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
// The pool is pinned to one connection: every new connection to ":memory:"
// would otherwise see its own empty database.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MustDB is NewInMemoryDB for tests.
func MustDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedUser inserts a user whose external id is "ext-"+id and whose password is "secret".
func SeedUser(t *testing.T, db *gorm.DB, id, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	u := models.User{ID: id, ExternalID: "ext-" + id, Username: username, Password: string(hash)}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// SeedFriendship inserts a friendship with the given status.
func SeedFriendship(t *testing.T, db *gorm.DB, requesterID, addresseeID string, status models.FriendshipStatus) models.Friendship {
	t.Helper()
	f := models.Friendship{
		ID:          "f-" + requesterID + "-" + addresseeID,
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      status,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}

// SeedSong inserts a catalog entry created at the given time.
func SeedSong(t *testing.T, db *gorm.DB, id, title string, category models.SongCategory, createdAt time.Time) models.Song {
	t.Helper()
	s := models.Song{ID: id, Title: title, Artist: "artist-" + id, Category: category, CoverURL: "https://cdn.example/" + id + ".jpg", CreatedAt: createdAt}
	require.NoError(t, db.Create(&s).Error)
	return s
}
