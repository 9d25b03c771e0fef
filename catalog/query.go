package catalog

import (
	"bytes"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rpupo63/video-catalog-backend/models"
)

type SortKey string

const (
	SortAdded     SortKey = "added"
	SortPublished SortKey = "published"
	SortRating    SortKey = "rating"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// VideoQuery is a normalized list request: filter, order and page window.
type VideoQuery struct {
	Search   string
	Tag      string
	Category string
	Sort     SortKey
	Order    SortOrder
	Limit    int
	Offset   int
}

// ParseVideoQuery reads list parameters from a query string. Unknown or
// malformed values fall back to defaults rather than failing the request.
func ParseVideoQuery(values url.Values) VideoQuery {
	q := VideoQuery{
		Search:   values.Get("q"),
		Tag:      values.Get("tag"),
		Category: values.Get("category"),
		Sort:     SortKey(values.Get("sort")),
		Order:    SortOrder(values.Get("order")),
		Limit:    DefaultLimit,
	}
	if limit, ok := parseBound(values.Get("limit"), 1, MaxLimit); ok {
		q.Limit = limit
	}
	if offset, ok := parseBound(values.Get("offset"), 0, math.MaxInt); ok {
		q.Offset = offset
	}
	return q.Normalize()
}

// parseBound parses an integer and clamps it to [lo, hi]. Values too large
// for an int saturate instead of being treated as malformed.
func parseBound(raw string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		if n < 0 {
			return lo, true
		}
		return hi, true
	}
	return min(max(n, lo), hi), true
}

// Normalize trims text filters and clamps sort, order and the page window.
// A zero Limit means the default page size.
func (q VideoQuery) Normalize() VideoQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Tag = strings.TrimSpace(q.Tag)
	q.Category = strings.TrimSpace(q.Category)

	switch q.Sort {
	case SortAdded, SortPublished, SortRating:
	default:
		q.Sort = SortAdded
	}
	switch q.Order {
	case OrderAsc, OrderDesc:
	default:
		q.Order = OrderDesc
	}

	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Values encodes the query for an HTTP request. Empty filters are omitted.
func (q VideoQuery) Values() url.Values {
	q = q.Normalize()
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	v.Set("sort", string(q.Sort))
	v.Set("order", string(q.Order))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// Matches reports whether entry passes the tag, category and search filters.
func (q VideoQuery) Matches(entry *models.VideoEntry) bool {
	if q.Tag != "" && !hasTag(entry.Tags, q.Tag) {
		return false
	}
	if q.Category != "" && entry.Category != q.Category {
		return false
	}
	if q.Search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Title), strings.ToLower(q.Search)) {
		return true
	}
	return hasTag(entry.Tags, q.Search)
}

// Less orders entries by the sort key in the requested direction. A missing
// publish date sorts last in either direction and ties fall back to id ascending.
func (q VideoQuery) Less(a, b *models.VideoEntry) bool {
	var cmp int
	switch q.Sort {
	case SortRating:
		cmp = a.Rating - b.Rating
	case SortPublished:
		switch {
		case a.PublishDate == nil && b.PublishDate == nil:
			cmp = 0
		case a.PublishDate == nil:
			return false
		case b.PublishDate == nil:
			return true
		default:
			cmp = a.PublishDate.Compare(*b.PublishDate)
		}
	default:
		cmp = a.AddedDate.Compare(b.AddedDate)
	}

	if cmp != 0 {
		if q.Order == OrderAsc {
			return cmp < 0
		}
		return cmp > 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Window returns the slice bounds of the requested page over total items.
func (q VideoQuery) Window(total int) (start, end int) {
	start = min(q.Offset, total)
	end = min(start+q.Limit, total)
	return start, end
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
