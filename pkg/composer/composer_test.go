package composer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/pdf"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClientWithConfig(&Config{Document: pdf.DefaultDocumentOptions()})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Close(ctx)
	})
	return c
}

func drain(ch <-chan StreamEvent) []StreamEvent {
	var events []StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestClient_ComposeThenExtract(t *testing.T) {
	c := newClient(t)
	dir := t.TempDir()

	_, ok := c.Status()
	assert.False(t, ok)

	album := filepath.Join(dir, "album.pdf")
	events, err := c.ComposeImages(context.Background(), []string{
		writePNG(t, dir, "a.png", 10, 10),
		writePNG(t, dir, "b.png", 20, 10),
	}, DefaultSourceFitLayout(), album)
	require.NoError(t, err)

	got := drain(events)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	require.Equal(t, EventComplete, last.Type, "last event: %+v", last)
	assert.Equal(t, album, last.Result.OutputPath)

	snap, ok := c.Status()
	require.True(t, ok)
	assert.Equal(t, Completed, snap.State)

	pages, err := ParsePageList("1,0")
	require.NoError(t, err)
	var sel PageSelection
	sel.Add(album, pages...)

	events, err = c.ExtractPages(context.Background(), sel, filepath.Join(dir, "swapped"))
	require.NoError(t, err)
	got = drain(events)
	last = got[len(got)-1]
	require.Equal(t, EventComplete, last.Type, "last event: %+v", last)
	assert.Equal(t, 2, last.Result.Pages)

	info, err := pdf.Inspect(filepath.Join(dir, "swapped.pdf"))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, info.Pages[0].Width, 0.01)
	assert.InDelta(t, 1.0, info.Pages[1].Width, 0.01)
}

func TestClient_RejectsInvalidJob(t *testing.T) {
	c := newClient(t)

	_, err := c.ComposeImages(context.Background(), nil, DefaultSourceFitLayout(), "x.pdf")
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))

	_, err = c.ExtractPages(context.Background(), nil, "x.pdf")
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}

func TestClient_ContextCancelStopsJob(t *testing.T) {
	c := newClient(t)
	dir := t.TempDir()

	var images []string
	for i := 0; i < 50; i++ {
		images = append(images, writePNG(t, dir, "img"+string(rune('a'+i%26))+string(rune('a'+i/26))+".png", 64, 64))
	}
	out := filepath.Join(dir, "out.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, err := c.ComposeImages(ctx, images, DefaultSourceFitLayout(), out)
	require.NoError(t, err)
	got := drain(events)
	last := got[len(got)-1]

	// the worker may finish before it sees the cancellation
	if last.Type == EventError {
		assert.True(t, domain.IsType(last.Err, domain.ErrorTypeCancelled), "got %v", last.Err)
		assert.NoFileExists(t, out)
	} else {
		assert.Equal(t, EventComplete, last.Type)
	}
}
