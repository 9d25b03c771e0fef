package services

import (
	"fmt"
	"regexp"
)

// FallbackThumbnailURL is shown for links that do not carry a recognizable video id.
const FallbackThumbnailURL = "https://images.unsplash.com/photo-1461749280684-dccba630e2f6?q=80&w=1200&auto=format&fit=crop"

var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/)|youtu\.be/)([a-zA-Z0-9_-]{6,})`)

// VideoID extracts the YouTube video id from a watch, embed or short link.
func VideoID(rawURL string) (string, bool) {
	match := youtubeIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ThumbnailURL derives the high quality thumbnail for a YouTube link.
func ThumbnailURL(rawURL string) string {
	id, ok := VideoID(rawURL)
	if !ok {
		return FallbackThumbnailURL
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id)
}
