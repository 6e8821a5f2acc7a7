package storage

import (
	"bytes"
	"context"
	"io"
	"strconv"
)

const placeholderPrefix = "This is a simulated video content for video ID: "

// PlaceholderSource stands in for real media storage. Its payload is a deterministic
// text that embeds the video id.
type PlaceholderSource struct{}

func NewPlaceholderSource() *PlaceholderSource {
	return &PlaceholderSource{}
}

func (PlaceholderSource) Open(ctx context.Context, videoID int64) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nopCloser{bytes.NewReader(PlaceholderContent(videoID))}, nil
}

// PlaceholderContent returns the payload PlaceholderSource serves for videoID.
func PlaceholderContent(videoID int64) []byte {
	return []byte(placeholderPrefix + formatID(videoID))
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error {
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
