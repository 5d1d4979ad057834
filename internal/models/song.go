package models

import "time"

// SongCategory is the closed set of catalog categories.
type SongCategory string

const (
	CategoryPop        SongCategory = "pop"
	CategoryRock       SongCategory = "rock"
	CategoryHipHop     SongCategory = "hiphop"
	CategoryJazz       SongCategory = "jazz"
	CategoryClassical  SongCategory = "classical"
	CategoryElectronic SongCategory = "electronic"
)

var songCategories = map[SongCategory]struct{}{
	CategoryPop:        {},
	CategoryRock:       {},
	CategoryHipHop:     {},
	CategoryJazz:       {},
	CategoryClassical:  {},
	CategoryElectronic: {},
}

// Valid reports whether c is one of the accepted categories.
func (c SongCategory) Valid() bool {
	_, ok := songCategories[c]
	return ok
}

// Song is a read-only catalog entry.
type Song struct {
	ID        string       `json:"id" gorm:"primaryKey"`
	Title     string       `json:"title" gorm:"not null"`
	Artist    string       `json:"artist" gorm:"not null"`
	Category  SongCategory `json:"category" gorm:"not null;index"`
	CoverURL  string       `json:"coverUrl" gorm:"column:cover_url"`
	AudioURL  string       `json:"audioUrl" gorm:"column:audio_url"`
	CreatedAt time.Time    `json:"createdAt" gorm:"index"`
}

// TableName specifies the table name for Song Model
func (Song) TableName() string {
	return "songs"
}

// SongSummary is the projection returned by the random picks endpoint.
type SongSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"coverUrl"`
}
