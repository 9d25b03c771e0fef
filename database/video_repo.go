package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type VideoRepo struct {
	db *gorm.DB
}

func NewVideoRepo(db *gorm.DB) *VideoRepo {
	return &VideoRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *VideoRepo) GetDB() *gorm.DB {
	return r.db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *VideoRepo) filtered(tx *gorm.DB, q catalog.VideoQuery) *gorm.DB {
	stmt := tx.Model(&models.VideoEntry{})
	if q.Tag != "" {
		stmt = stmt.Where("? = ANY(tags)", q.Tag)
	}
	if q.Category != "" {
		stmt = stmt.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		stmt = stmt.Where(`(title ILIKE ? ESCAPE '\' OR ? = ANY(tags))`, "%"+likeEscaper.Replace(q.Search)+"%", q.Search)
	}
	return stmt
}

func orderBy(q catalog.VideoQuery) string {
	dir := "DESC"
	if q.Order == catalog.OrderAsc {
		dir = "ASC"
	}
	switch q.Sort {
	case catalog.SortRating:
		return "rating " + dir
	case catalog.SortPublished:
		return "publish_date " + dir + " NULLS LAST"
	default:
		return "created_at " + dir
	}
}

// List counts and pages inside one read-only repeatable-read transaction so
// both see the same snapshot.
func (r *VideoRepo) List(ctx context.Context, q catalog.VideoQuery) ([]models.VideoEntry, int64, error) {
	q = q.Normalize()

	var (
		entries []models.VideoEntry
		total   int64
	)
	err := r.db.WithContext(ctx).Clauses(dbresolver.Read).Transaction(func(tx *gorm.DB) error {
		if err := r.filtered(tx, q).Count(&total).Error; err != nil {
			return err
		}
		if int64(q.Offset) >= total {
			return nil
		}
		return r.filtered(tx, q).
			Order(orderBy(q)).
			Order("id ASC").
			Limit(q.Limit).
			Offset(q.Offset).
			Find(&entries).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, errs.NewDatabaseError("list", "videos", err)
	}

	if entries == nil {
		entries = []models.VideoEntry{}
	}
	return entries, total, nil
}

// FindByID returns a video entry by its ID
func (r *VideoRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VideoEntry, error) {
	var entry models.VideoEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("video")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "video", err)
	}
	return &entry, nil
}

// Add inserts a new video entry into the database
func (r *VideoRepo) Add(ctx context.Context, entry *models.VideoEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errs.NewDatabaseError("create", "video", err)
	}
	return nil
}

// Patch updates only the masked columns, then reloads the row in the same transaction
func (r *VideoRepo) Patch(ctx context.Context, id uuid.UUID, in catalog.VideoInput) (*models.VideoEntry, error) {
	var entry models.VideoEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !in.Mask.IsEmpty() {
			res := tx.Model(&models.VideoEntry{}).Where("id = ?", id).Updates(in.Updates())
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.First(&entry, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("video")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("update", "video", err)
	}
	return &entry, nil
}

// Delete removes a video entry by id; deleting a missing id is NotFound
func (r *VideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.VideoEntry{}, "id = ?", id)
	if res.Error != nil {
		return errs.NewDatabaseError("delete", "video", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("video")
	}
	return nil
}
