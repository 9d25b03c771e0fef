package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// VideoEntry is a bookmarked, externally hosted video
type VideoEntry struct {
	ID           uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	YoutubeURL   string         `json:"youtubeUrl" db:"youtube_url" gorm:"type:text;not null"`
	Title        string         `json:"title" db:"title" gorm:"type:text;not null"`
	ThumbnailURL string         `json:"thumbnailUrl" db:"thumbnail_url" gorm:"type:text;not null;default:''"`
	Tags         pq.StringArray `json:"tags" db:"tags" gorm:"type:text[];not null;default:'{}'"`
	Category     string         `json:"category" db:"category" gorm:"type:text;not null;index:idx_video_entries_category"`
	Rating       int            `json:"rating" db:"rating" gorm:"type:smallint;not null;check:chk_video_entries_rating,rating BETWEEN 1 AND 5"`
	GoodPoints   string         `json:"goodPoints" db:"good_points" gorm:"type:text;not null;default:''"`
	Memo         string         `json:"memo" db:"memo" gorm:"type:text;not null;default:''"`
	AddedDate    time.Time      `json:"addedDate" db:"created_at" gorm:"column:created_at;type:timestamptz;not null;autoCreateTime;index:idx_video_entries_created_at"`
	PublishDate  *time.Time     `json:"publishDate" db:"publish_date" gorm:"type:timestamptz"`
}

// BeforeCreate assigns the id and creation time; values sent by callers are discarded
func (v *VideoEntry) BeforeCreate(tx *gorm.DB) error {
	v.ID = uuid.New()
	v.AddedDate = time.Now().UTC().Truncate(time.Microsecond)
	if v.Tags == nil {
		v.Tags = pq.StringArray{}
	}
	return nil
}
