package catalog

import "strings"

// VideoField names one writable attribute of a video entry.
type VideoField uint8

const (
	FieldYoutubeURL VideoField = iota
	FieldTitle
	FieldThumbnailURL
	FieldTags
	FieldCategory
	FieldRating
	FieldGoodPoints
	FieldMemo
	FieldPublishDate

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldYoutubeURL:   "youtubeUrl",
	FieldTitle:        "title",
	FieldThumbnailURL: "thumbnailUrl",
	FieldTags:         "tags",
	FieldCategory:     "category",
	FieldRating:       "rating",
	FieldGoodPoints:   "goodPoints",
	FieldMemo:         "memo",
	FieldPublishDate:  "publishDate",
}

var fieldColumns = [fieldCount]string{
	FieldYoutubeURL:   "youtube_url",
	FieldTitle:        "title",
	FieldThumbnailURL: "thumbnail_url",
	FieldTags:         "tags",
	FieldCategory:     "category",
	FieldRating:       "rating",
	FieldGoodPoints:   "good_points",
	FieldMemo:         "memo",
	FieldPublishDate:  "publish_date",
}

// AllFields lists every writable field in declaration order.
func AllFields() []VideoField {
	fields := make([]VideoField, 0, fieldCount)
	for f := VideoField(0); f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// String returns the JSON name of the field.
func (f VideoField) String() string {
	if f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Column returns the database column backing the field.
func (f VideoField) Column() string {
	if f >= fieldCount {
		return ""
	}
	return fieldColumns[f]
}

// FieldMask is the set of fields present in a partial update.
type FieldMask uint16

func MaskOf(fields ...VideoField) FieldMask {
	var m FieldMask
	for _, f := range fields {
		m = m.With(f)
	}
	return m
}

func (m FieldMask) Has(f VideoField) bool {
	return f < fieldCount && m&(1<<f) != 0
}

func (m FieldMask) With(f VideoField) FieldMask {
	if f >= fieldCount {
		return m
	}
	return m | 1<<f
}

func (m FieldMask) Without(f VideoField) FieldMask {
	return m &^ (1 << f)
}

func (m FieldMask) IsEmpty() bool {
	return m == 0
}

// Fields returns the members of the mask in declaration order.
func (m FieldMask) Fields() []VideoField {
	var fields []VideoField
	for _, f := range AllFields() {
		if m.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (m FieldMask) String() string {
	names := make([]string, 0, fieldCount)
	for _, f := range m.Fields() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
