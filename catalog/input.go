package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rpupo63/video-catalog-backend/errs"
	"github.com/rpupo63/video-catalog-backend/models"
	"github.com/rpupo63/video-catalog-backend/services"
)

// VideoInput is a decoded, validated create or update body. Only fields in
// Mask carry meaning.
type VideoInput struct {
	Mask         FieldMask
	YoutubeURL   string
	Title        string
	ThumbnailURL string
	Tags         []string
	Category     string
	Rating       int
	GoodPoints   string
	Memo         string
	PublishDate  *time.Time
}

// DecodeObject splits a JSON object body into its raw members.
func DecodeObject(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errs.NewMalformedPayloadError("video", err)
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

// ParseCreate validates a full create body. Absent optional fields take their
// defaults; every invalid field is reported together.
func (r Rules) ParseCreate(raw map[string]json.RawMessage) (VideoInput, error) {
	return r.parse(raw, false)
}

// ParsePatch validates only the fields present in raw and records them in Mask.
func (r Rules) ParsePatch(raw map[string]json.RawMessage) (VideoInput, error) {
	return r.parse(raw, true)
}

func (r Rules) parse(raw map[string]json.RawMessage, partial bool) (VideoInput, error) {
	in := VideoInput{}
	problems := map[string]string{}

	present := func(f VideoField) (json.RawMessage, bool) {
		value, ok := raw[f.String()]
		if ok || !partial {
			in.Mask = in.Mask.With(f)
		}
		return value, ok
	}
	report := func(f VideoField, msg string) {
		if msg != "" {
			problems[f.String()] = msg
		}
	}

	if value, ok := present(FieldYoutubeURL); ok || !partial {
		in.YoutubeURL = stringValue(value)
		report(FieldYoutubeURL, r.checkRequired(in.YoutubeURL, "youtubeUrl"))
	}
	if value, ok := present(FieldTitle); ok || !partial {
		in.Title = stringValue(value)
		report(FieldTitle, r.checkRequired(in.Title, "title"))
	}
	if value, ok := present(FieldThumbnailURL); ok || !partial {
		in.ThumbnailURL = stringValue(value)
		if in.ThumbnailURL == "" && in.YoutubeURL != "" {
			in.ThumbnailURL = services.ThumbnailURL(in.YoutubeURL)
		}
	}
	if value, ok := present(FieldTags); ok || !partial {
		in.Tags = tagsValue(value)
		report(FieldTags, r.checkTags(in.Tags))
	}
	if value, ok := present(FieldCategory); ok || !partial {
		in.Category = stringValue(value)
		if in.Category == "" {
			in.Category = r.Uncategorized
		}
		report(FieldCategory, r.checkCategory(in.Category))
	}
	if value, ok := present(FieldRating); ok || !partial {
		switch {
		case ok && !isNull(value):
			rating := numberValue(value)
			if msg := r.checkRating(rating); msg != "" {
				report(FieldRating, msg)
			} else {
				in.Rating = int(math.Round(rating))
			}
		case partial:
			report(FieldRating, r.checkRating(math.NaN()))
		default:
			in.Rating = DefaultRating
		}
	}
	if value, ok := present(FieldGoodPoints); ok || !partial {
		in.GoodPoints = stringValue(value)
		report(FieldGoodPoints, r.checkText(in.GoodPoints, "goodPoints"))
	}
	if value, ok := present(FieldMemo); ok || !partial {
		in.Memo = stringValue(value)
		report(FieldMemo, r.checkText(in.Memo, "memo"))
	}
	if value, ok := present(FieldPublishDate); ok {
		date, valid := dateValue(value)
		if !valid {
			report(FieldPublishDate, "publishDate must be an ISO-8601 date")
		}
		in.PublishDate = date
	}

	if len(problems) > 0 {
		return VideoInput{}, errs.NewValidationError(problems)
	}
	return in, nil
}

// NewEntry builds the entry a create stores. id and addedDate are left for
// the store to assign.
func (in VideoInput) NewEntry() *models.VideoEntry {
	entry := &models.VideoEntry{}
	in.ApplyTo(entry)
	return entry
}

// ApplyTo copies the masked fields onto entry.
func (in VideoInput) ApplyTo(entry *models.VideoEntry) {
	for _, f := range in.Mask.Fields() {
		switch f {
		case FieldYoutubeURL:
			entry.YoutubeURL = in.YoutubeURL
		case FieldTitle:
			entry.Title = in.Title
		case FieldThumbnailURL:
			entry.ThumbnailURL = in.ThumbnailURL
		case FieldTags:
			entry.Tags = pq.StringArray(append([]string{}, in.Tags...))
		case FieldCategory:
			entry.Category = in.Category
		case FieldRating:
			entry.Rating = in.Rating
		case FieldGoodPoints:
			entry.GoodPoints = in.GoodPoints
		case FieldMemo:
			entry.Memo = in.Memo
		case FieldPublishDate:
			if in.PublishDate == nil {
				entry.PublishDate = nil
			} else {
				date := *in.PublishDate
				entry.PublishDate = &date
			}
		}
	}
}

// Updates returns column assignments for the masked fields.
func (in VideoInput) Updates() map[string]any {
	probe := &models.VideoEntry{}
	in.ApplyTo(probe)

	updates := make(map[string]any, len(in.Mask.Fields()))
	for _, f := range in.Mask.Fields() {
		var value any
		switch f {
		case FieldYoutubeURL:
			value = probe.YoutubeURL
		case FieldTitle:
			value = probe.Title
		case FieldThumbnailURL:
			value = probe.ThumbnailURL
		case FieldTags:
			value = probe.Tags
		case FieldCategory:
			value = probe.Category
		case FieldRating:
			value = probe.Rating
		case FieldGoodPoints:
			value = probe.GoodPoints
		case FieldMemo:
			value = probe.Memo
		case FieldPublishDate:
			if probe.PublishDate != nil {
				value = *probe.PublishDate
			}
		}
		updates[f.Column()] = value
	}
	return updates
}

func isNull(value json.RawMessage) bool {
	return len(value) == 0 || string(bytes.TrimSpace(value)) == "null"
}

// stringValue trims a JSON string. Any other JSON type reads as empty.
func stringValue(value json.RawMessage) string {
	var s string
	if isNull(value) || json.Unmarshal(value, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// tagsValue accepts an array of strings or a comma separated string. Non-string
// elements and blank tags are dropped; order and duplicates are kept.
func tagsValue(value json.RawMessage) []string {
	tags := []string{}
	if isNull(value) {
		return tags
	}

	var items []any
	if err := json.Unmarshal(value, &items); err == nil {
		for _, item := range items {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
		}
		return tags
	}

	var joined string
	if err := json.Unmarshal(value, &joined); err == nil {
		for _, part := range strings.Split(joined, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	}
	return tags
}

// numberValue reads a JSON number or numeric string. Anything else is NaN.
func numberValue(value json.RawMessage) float64 {
	var n float64
	if err := json.Unmarshal(value, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return math.NaN()
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// dateValue parses publishDate. null or an empty string clears the date.
func dateValue(value json.RawMessage) (*time.Time, bool) {
	if isNull(value) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC().Truncate(time.Microsecond)
			return &t, true
		}
	}
	return nil, false
}
