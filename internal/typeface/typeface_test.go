package typeface

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexileapp/lexile-server/internal/dom"
)

func woff2(extra string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("wOF2" + extra)}
}

type stubFaces struct {
	mu    sync.Mutex
	fail  map[int]error
	calls []int
}

func (s *stubFaces) LoadFace(_ context.Context, face Face) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, face.Weight)
	return s.fail[face.Weight]
}

func TestEnsureTypefaceLoaded_Local(t *testing.T) {
	fsys := fstest.MapFS{
		Regular.File: woff2("regular"),
		Bold.File:    woff2("bold"),
	}
	l := New(NewFSLoader(fsys))
	doc := dom.New()

	src, err := l.EnsureTypefaceLoaded(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, src)

	marker := doc.GetElementByID(MarkerID)
	require.NotNil(t, marker)
	assert.Equal(t, "style", marker.Tag())
	v, _ := marker.Attr("data-source")
	assert.Equal(t, "local", v)
	assert.Contains(t, marker.Text(), "url('/fonts/OpenDyslexic-Regular.woff2')")
	assert.Contains(t, marker.Text(), "font-weight: 700")
}

func TestEnsureTypefaceLoaded_BoldFailureTolerated(t *testing.T) {
	fsys := fstest.MapFS{
		Regular.File: woff2(""),
		Bold.File:    {Data: []byte("not a font")},
	}
	l := New(NewFSLoader(fsys))
	doc := dom.New()

	src, err := l.EnsureTypefaceLoaded(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, src)

	marker := doc.GetElementByID(MarkerID)
	require.NotNil(t, marker)
	assert.NotContains(t, marker.Text(), "font-weight: 700")
}

func TestEnsureTypefaceLoaded_CDNFallback(t *testing.T) {
	tests := []struct {
		name   string
		loader FaceLoader
	}{
		{"nil loader", nil},
		{"nil filesystem", NewFSLoader(nil)},
		{"missing files", NewFSLoader(fstest.MapFS{})},
		{"corrupt regular", NewFSLoader(fstest.MapFS{Regular.File: {Data: []byte("xx")}})},
		{"regular rejected", &stubFaces{fail: map[int]error{400: errors.New("network")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.loader, WithCDNStylesheet("https://cdn.example/od.css"))
			doc := dom.New()

			src, err := l.EnsureTypefaceLoaded(context.Background(), doc)
			require.NoError(t, err)
			assert.Equal(t, SourceCDN, src)

			marker := doc.GetElementByID(MarkerID)
			require.NotNil(t, marker)
			assert.Equal(t, "link", marker.Tag())
			href, _ := marker.Attr("href")
			assert.Equal(t, "https://cdn.example/od.css", href)
			rel, _ := marker.Attr("rel")
			assert.Equal(t, "stylesheet", rel)
		})
	}
}

func TestEnsureTypefaceLoaded_OnlyOnce(t *testing.T) {
	faces := &stubFaces{}
	l := New(faces)
	doc := dom.New()

	first, err := l.EnsureTypefaceLoaded(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, first)

	second, err := l.EnsureTypefaceLoaded(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, SourceExisting, second)

	assert.Equal(t, []int{400, 700}, faces.calls, "second call must not reload faces")
}

func TestEnsureTypefaceLoaded_ConcurrentSingleMarker(t *testing.T) {
	l := New(&stubFaces{})
	doc := dom.New()

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, _ = l.EnsureTypefaceLoaded(context.Background(), doc)
		})
	}
	wg.Wait()

	// Exactly one marker: removing it leaves none behind.
	marker := doc.GetElementByID(MarkerID)
	require.NotNil(t, marker)
	marker.Remove()
	assert.Nil(t, doc.GetElementByID(MarkerID))
}

func TestEnsureTypefaceLoaded_Errors(t *testing.T) {
	l := New(nil)

	_, err := l.EnsureTypefaceLoaded(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.EnsureTypefaceLoaded(ctx, dom.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLogger_UsesLoggerAsGiven(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("component", "typeface")
	l := New(nil, WithLogger(log))

	_, err := l.EnsureTypefaceLoaded(context.Background(), dom.New())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
	}
}

func TestFontFaceCSS(t *testing.T) {
	css := FontFaceCSS("/static/fonts/", []Face{Regular})

	assert.Equal(t,
		"@font-face { font-family: 'OpenDyslexic'; src: url('/static/fonts/OpenDyslexic-Regular.woff2') format('woff2'); font-weight: 400; font-style: normal; font-display: swap; }\n",
		css)
}
