package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/models"
)

type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenLogin
	ScreenAdd
	ScreenEdit
)

func (s Screen) String() string {
	switch s {
	case ScreenDetail:
		return "detail"
	case ScreenLogin:
		return "login"
	case ScreenAdd:
		return "add"
	case ScreenEdit:
		return "edit"
	default:
		return "list"
	}
}

// requiresAdmin reports whether the screen mutates the catalog.
func (s Screen) requiresAdmin() bool {
	return s == ScreenAdd || s == ScreenEdit
}

// SortOption is the sort dropdown value.
type SortOption string

const (
	SortNewest SortOption = "newest"
	SortFuture SortOption = "future"
	SortRating SortOption = "rating"
)

// Query maps the option to the server's sort key. Every option sorts descending.
func (o SortOption) Query() (catalog.SortKey, catalog.SortOrder) {
	switch o {
	case SortFuture:
		return catalog.SortPublished, catalog.OrderDesc
	case SortRating:
		return catalog.SortRating, catalog.OrderDesc
	default:
		return catalog.SortAdded, catalog.OrderDesc
	}
}

const (
	DefaultPageSize       = 10
	DefaultSearchDebounce = 300 * time.Millisecond
	maxVisiblePages       = 5
)

var (
	// ErrStale is returned by a fetch whose response was superseded by a later one.
	ErrStale         = errors.New("client: list response superseded")
	ErrAdminRequired = errors.New("client: screen requires an administrator session")
)

// Lister is the list call the controller drives.
type Lister interface {
	ListVideos(ctx context.Context, q catalog.VideoQuery) (Page, error)
}

// ListState is a snapshot of what the list screen shows.
type ListState struct {
	Screen          Screen
	Sort            SortOption
	SearchQuery     string
	DebouncedSearch string
	Tag             string
	Category        string
	CurrentPage     int
	PageSize        int
	Videos          []models.VideoEntry
	TotalCount      int64
	Loading         bool
	Err             error
}

// TotalPages is never less than one.
func (s ListState) TotalPages() int {
	return totalPages(s.TotalCount, s.PageSize)
}

func (s ListState) PageLabel() string {
	return fmt.Sprintf("%d / %d", s.CurrentPage, s.TotalPages())
}

// VisiblePages are the page buttons to render.
func (s ListState) VisiblePages() []int {
	return VisiblePages(s.CurrentPage, s.TotalPages(), maxVisiblePages)
}

// ListController keeps the displayed page consistent with the sort, search
// and page the visitor picked. Every change issues exactly one list request;
// a response that arrives after a newer request was issued is dropped.
type ListController struct {
	lister    Lister
	session   *Session
	debouncer *Debouncer
	onChange  func(ListState)

	ctx  context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	state      ListState
	generation uint64
	cancel     context.CancelFunc
}

type ControllerOption func(*ListController)

func WithPageSize(size int) ControllerOption {
	return func(c *ListController) {
		if size > 0 {
			c.state.PageSize = size
		}
	}
}

func WithSearchDebounce(delay time.Duration) ControllerOption {
	return func(c *ListController) { c.debouncer = NewDebouncer(delay) }
}

// WithOnChange registers a callback invoked with every new state. It runs
// outside the controller's lock.
func WithOnChange(fn func(ListState)) ControllerOption {
	return func(c *ListController) { c.onChange = fn }
}

func NewListController(lister Lister, session *Session, opts ...ControllerOption) *ListController {
	ctx, stop := context.WithCancel(context.Background())
	c := &ListController{
		lister:    lister,
		session:   session,
		debouncer: NewDebouncer(DefaultSearchDebounce),
		ctx:       ctx,
		stop:      stop,
		state: ListState{
			Screen:      ScreenList,
			Sort:        SortNewest,
			CurrentPage: 1,
			PageSize:    DefaultPageSize,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Refresh re-fetches the current page.
func (c *ListController) Refresh(ctx context.Context) error {
	return c.update(ctx, func(*ListState) {})
}

// SetSort changes the sort and returns to the first page.
func (c *ListController) SetSort(ctx context.Context, option SortOption) error {
	return c.update(ctx, func(s *ListState) {
		s.Sort = option
		s.CurrentPage = 1
	})
}

// SetTag filters by an exact tag and returns to the first page.
func (c *ListController) SetTag(ctx context.Context, tag string) error {
	return c.update(ctx, func(s *ListState) {
		s.Tag = strings.TrimSpace(tag)
		s.CurrentPage = 1
	})
}

// SetCategory filters by an exact category and returns to the first page.
func (c *ListController) SetCategory(ctx context.Context, category string) error {
	return c.update(ctx, func(s *ListState) {
		s.Category = strings.TrimSpace(category)
		s.CurrentPage = 1
	})
}

// SetSearch records the raw search box value. The list is re-fetched once the
// input has been quiet for the debounce window, and only if the trimmed
// query actually changed.
func (c *ListController) SetSearch(raw string) {
	c.mu.Lock()
	c.state.SearchQuery = raw
	snapshot := c.snapshot()
	c.mu.Unlock()
	c.notify(snapshot)

	query := strings.TrimSpace(raw)
	c.debouncer.Schedule(func() {
		c.applySearch(query)
	})
}

func (c *ListController) applySearch(query string) {
	c.mu.Lock()
	unchanged := c.state.DebouncedSearch == query
	c.mu.Unlock()
	if unchanged {
		return
	}

	// failures land in State().Err
	_ = c.update(c.ctx, func(s *ListState) {
		s.DebouncedSearch = query
		s.CurrentPage = 1
	})
}

// GoToPage clamps page into [1, TotalPages] and fetches it.
func (c *ListController) GoToPage(ctx context.Context, page int) error {
	return c.update(ctx, func(s *ListState) {
		s.CurrentPage = min(max(page, 1), s.TotalPages())
	})
}

// AfterDelete moves back a page when the deleted entry was the only one on
// the last page, then re-fetches.
func (c *ListController) AfterDelete(ctx context.Context) error {
	return c.update(ctx, func(s *ListState) {
		remaining := max(s.TotalCount-1, 0)
		s.CurrentPage = min(s.CurrentPage, totalPages(remaining, s.PageSize))
	})
}

// Navigate switches screens. Add and Edit require an administrator session;
// without one the login screen is shown instead.
func (c *ListController) Navigate(screen Screen) error {
	var err error
	if screen.requiresAdmin() && !c.session.IsAdmin() {
		screen = ScreenLogin
		err = ErrAdminRequired
	}

	c.mu.Lock()
	c.state.Screen = screen
	snapshot := c.snapshot()
	c.mu.Unlock()
	c.notify(snapshot)
	return err
}

// Close cancels the pending search and any in-flight request.
func (c *ListController) Close() {
	c.debouncer.Stop()
	c.stop()
}

func (c *ListController) update(ctx context.Context, mutate func(*ListState)) error {
	c.mu.Lock()
	mutate(&c.state)
	c.generation++
	generation := c.generation
	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state.Loading = true
	query := c.query()
	snapshot := c.snapshot()
	c.mu.Unlock()
	c.notify(snapshot)

	page, err := c.lister.ListVideos(reqCtx, query)

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		cancel()
		return ErrStale
	}
	c.cancel = nil
	cancel()
	c.state.Loading = false
	c.state.Err = err
	if err == nil {
		c.state.Videos = page.Videos
		c.state.TotalCount = page.TotalCount
	}
	snapshot = c.snapshot()
	c.mu.Unlock()
	c.notify(snapshot)
	return err
}

// query must be called with mu held.
func (c *ListController) query() catalog.VideoQuery {
	sort, order := c.state.Sort.Query()
	return catalog.VideoQuery{
		Search:   c.state.DebouncedSearch,
		Tag:      c.state.Tag,
		Category: c.state.Category,
		Sort:     sort,
		Order:    order,
		Limit:    c.state.PageSize,
		Offset:   (c.state.CurrentPage - 1) * c.state.PageSize,
	}.Normalize()
}

func (c *ListController) snapshot() ListState {
	s := c.state
	s.Videos = append([]models.VideoEntry(nil), c.state.Videos...)
	return s
}

func (c *ListController) notify(s ListState) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return max(pages, 1)
}

// VisiblePages returns at most limit consecutive page numbers, centered on
// current where possible and clamped to [1, total].
func VisiblePages(current, total, limit int) []int {
	total = max(total, 1)
	limit = max(limit, 1)
	current = min(max(current, 1), total)

	start := max(current-limit/2, 1)
	end := start + limit - 1
	if end > total {
		end = total
		start = max(end-limit+1, 1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
