package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/models"
	"gorm.io/gorm"
)

// VideoRepository is the entity store for video entries. Missing ids surface
// as errs NotFound; any other failure as errs StoreFailure.
type VideoRepository interface {
	// List returns one page of entries matching q and the total matching count,
	// both read from the same snapshot.
	List(ctx context.Context, q catalog.VideoQuery) ([]models.VideoEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VideoEntry, error)
	// Add stores entry, assigning its id and addedDate.
	Add(ctx context.Context, entry *models.VideoEntry) error
	// Patch applies the masked fields of in and returns the full updated entry.
	Patch(ctx context.Context, id uuid.UUID, in catalog.VideoInput) (*models.VideoEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Database struct {
	videoRepo VideoRepository
}

// New initializes a Database backed by a shared GORM instance
func New(db *gorm.DB) Database {
	return Database{
		videoRepo: NewVideoRepo(db),
	}
}

// NewInMemory initializes a Database whose state lives only in process memory
func NewInMemory() Database {
	return Database{
		videoRepo: NewMemoryVideoRepo(),
	}
}

func (d Database) VideoRepo() VideoRepository {
	return d.videoRepo
}
