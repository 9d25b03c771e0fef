package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeCreateAssignsServerFields(t *testing.T) {
	callerID := uuid.New()
	callerDate := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := &VideoEntry{ID: callerID, AddedDate: callerDate, Title: "T"}

	require.NoError(t, entry.BeforeCreate(nil))

	assert.NotEqual(t, callerID, entry.ID)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.True(t, entry.AddedDate.After(callerDate))
	assert.NotNil(t, entry.Tags)
}

func TestVideoEntryJSONShape(t *testing.T) {
	entry := VideoEntry{
		ID:         uuid.MustParse("7f1f7c1e-4a57-4d6f-9d7c-1c1e8f0c2a11"),
		YoutubeURL: "https://youtu.be/abc123456",
		Title:      "T",
		Tags:       []string{"go"},
		Rating:     3,
		AddedDate:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2024-05-01T12:00:00Z", decoded["addedDate"])
	assert.Nil(t, decoded["publishDate"])
	assert.Contains(t, decoded, "publishDate")
	assert.Equal(t, []any{"go"}, decoded["tags"])
	assert.Equal(t, "https://youtu.be/abc123456", decoded["youtubeUrl"])
}

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches(
		[]string{"id", "title", "legacy_views", "created_at"},
		[]string{"id", "title", "created_at"},
	)
	assert.Equal(t, []string{"legacy_views"}, got)
	assert.Empty(t, findColumnMismatches([]string{"id"}, []string{"id", "title"}))
}
