package storage

import (
	"context"
	"io"
	"testing"
)

func TestPlaceholderSource(t *testing.T) {
	source := NewPlaceholderSource()

	t.Run("Open", func(t *testing.T) {
		content, err := source.Open(context.Background(), 42)
		if err != nil {
			t.Fatalf("Failed to open content: %v", err)
		}
		defer content.Close()

		data, err := io.ReadAll(content)
		if err != nil {
			t.Fatalf("Failed to read content: %v", err)
		}

		expected := "This is a simulated video content for video ID: 42"
		if string(data) != expected {
			t.Errorf("Expected %q, got %q", expected, string(data))
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		if string(PlaceholderContent(7)) != string(PlaceholderContent(7)) {
			t.Error("Expected identical payloads for the same id")
		}
		if string(PlaceholderContent(7)) == string(PlaceholderContent(8)) {
			t.Error("Expected payloads to differ between ids")
		}
	})

	t.Run("Seekable", func(t *testing.T) {
		content, err := source.Open(context.Background(), 1)
		if err != nil {
			t.Fatalf("Failed to open content: %v", err)
		}
		defer content.Close()

		size, err := content.Seek(0, io.SeekEnd)
		if err != nil {
			t.Fatalf("Failed to seek: %v", err)
		}
		if size != int64(len(PlaceholderContent(1))) {
			t.Errorf("Expected size %d, got %d", len(PlaceholderContent(1)), size)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := source.Open(ctx, 1); err == nil {
			t.Error("Expected error for cancelled context")
		}
	})

	t.Run("Filename", func(t *testing.T) {
		if got := ContentFilename(5); got != "video-5.mp4" {
			t.Errorf("Expected video-5.mp4, got %s", got)
		}
	})
}
