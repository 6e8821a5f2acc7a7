package storage

import (
	"context"
	"io"
)

// ContentSource resolves the playable payload of a video.
type ContentSource interface {
	Open(ctx context.Context, videoID int64) (io.ReadSeekCloser, error)
}

// ContentFilename is the inline filename a payload is served under.
func ContentFilename(videoID int64) string {
	return "video-" + formatID(videoID) + ".mp4"
}
