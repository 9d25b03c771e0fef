package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/models"
)

// MemoryVideoRepo keeps entries in process memory. It serves DB_TYPE=memory
// and tests.
type MemoryVideoRepo struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]models.VideoEntry
	lastAdded time.Time
}

func NewMemoryVideoRepo() *MemoryVideoRepo {
	return &MemoryVideoRepo{entries: make(map[uuid.UUID]models.VideoEntry)}
}

func (r *MemoryVideoRepo) List(ctx context.Context, q catalog.VideoQuery) ([]models.VideoEntry, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, errs.NewDatabaseError("list", "videos", err)
	}
	q = q.Normalize()

	r.mu.RLock()
	matched := make([]*models.VideoEntry, 0, len(r.entries))
	for id := range r.entries {
		entry := r.entries[id]
		if q.Matches(&entry) {
			matched = append(matched, &entry)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })

	start, end := q.Window(len(matched))
	page := make([]models.VideoEntry, 0, end-start)
	for _, entry := range matched[start:end] {
		page = append(page, cloneEntry(*entry))
	}
	return page, int64(len(matched)), nil
}

func (r *MemoryVideoRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VideoEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewDatabaseError("find", "video", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, errs.NewNotFound("video")
	}
	found := cloneEntry(entry)
	return &found, nil
}

func (r *MemoryVideoRepo) Add(ctx context.Context, entry *models.VideoEntry) error {
	if err := ctx.Err(); err != nil {
		return errs.NewDatabaseError("create", "video", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := entry.BeforeCreate(nil); err != nil {
		return errs.NewDatabaseError("create", "video", err)
	}
	// keep creation order strict so addedDate sorting is deterministic
	if !entry.AddedDate.After(r.lastAdded) {
		entry.AddedDate = r.lastAdded.Add(time.Microsecond)
	}
	r.lastAdded = entry.AddedDate

	r.entries[entry.ID] = cloneEntry(*entry)
	return nil
}

func (r *MemoryVideoRepo) Patch(ctx context.Context, id uuid.UUID, in catalog.VideoInput) (*models.VideoEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewDatabaseError("update", "video", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, errs.NewNotFound("video")
	}
	entry = cloneEntry(entry)
	in.ApplyTo(&entry)
	r.entries[id] = entry

	updated := cloneEntry(entry)
	return &updated, nil
}

func (r *MemoryVideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return errs.NewDatabaseError("delete", "video", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return errs.NewNotFound("video")
	}
	delete(r.entries, id)
	return nil
}

func cloneEntry(e models.VideoEntry) models.VideoEntry {
	e.Tags = append(pq.StringArray{}, e.Tags...)
	if e.PublishDate != nil {
		date := *e.PublishDate
		e.PublishDate = &date
	}
	return e
}
