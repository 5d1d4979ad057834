package store

import (
	"context"

	"chat-realtime-api/internal/models"
)

// ListSongs returns the whole catalog, newest first.
func (s *Store) ListSongs(ctx context.Context) ([]models.Song, error) {
	var out []models.Song
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RandomSongs picks up to n songs at random, projected to the summary fields.
func (s *Store) RandomSongs(ctx context.Context, n int) ([]models.SongSummary, error) {
	var out []models.SongSummary
	err := s.db.WithContext(ctx).Model(&models.Song{}).
		Select("id, title, artist, cover_url").
		Order("RANDOM()").
		Limit(n).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SongsByCategory returns songs in category, newest first. The caller validates category.
func (s *Store) SongsByCategory(ctx context.Context, category models.SongCategory) ([]models.Song, error) {
	var out []models.Song
	err := s.db.WithContext(ctx).Where("category = ?", category).Order("created_at desc").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
