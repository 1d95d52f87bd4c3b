package preferences

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexileapp/lexile-server/internal/dom"
	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/typeface"
)

const page = `<!DOCTYPE html><html lang="en" class="theme-light" style="color:red"><head><title>Reader</title></head><body><p>Some text</p></body></html>`

func localFonts() *typeface.Loader {
	return typeface.New(typeface.NewFSLoader(fstest.MapFS{
		typeface.Regular.File: {Data: []byte("wOF2regular")},
		typeface.Bold.File:    {Data: []byte("wOF2bold")},
	}))
}

func settings(ls, lh, fw float64) domain.PreferenceSettings {
	return domain.PreferenceSettings{Enabled: true, LetterSpacing: ls, LineHeight: lh, FontWeight: fw}
}

func parsePage(t *testing.T, opts ...dom.Option) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.ParseString(page, opts...)
	require.NoError(t, err)
	return doc
}

func countByID(doc *dom.HTMLDocument, id string) int {
	n := 0
	for doc.GetElementByID(id) != nil {
		doc.GetElementByID(id).Remove()
		n++
	}
	return n
}

func TestApply_Enable(t *testing.T) {
	a := NewApplier(localFonts())
	doc := parsePage(t)

	a.Apply(context.Background(), settings(4, 1.6, 700), doc)

	for _, el := range []dom.Element{doc.Root(), doc.Body()} {
		assert.True(t, el.HasClass(ClassDyslexic), el.Tag())
		assert.True(t, el.HasClass(ClassLineFocus), el.Tag())

		value, priority := el.Style("font-family")
		assert.Equal(t, FontStack, value)
		assert.Equal(t, dom.PriorityImportant, priority)

		value, _ = el.Style("letter-spacing")
		assert.Equal(t, "4px", value)
		value, _ = el.Style("line-height")
		assert.Equal(t, "1.6", value)
		value, _ = el.Style("font-weight")
		assert.Equal(t, "700", value)
	}

	root := doc.Root()
	v, _ := root.Style(VarLetterSpacing)
	assert.Equal(t, "4px", v)
	v, _ = root.Style(VarLineHeight)
	assert.Equal(t, "1.6", v)
	v, _ = root.Style(VarFontWeight)
	assert.Equal(t, "700", v)

	style := doc.GetElementByID(StyleID)
	require.NotNil(t, style)
	assert.Equal(t, "style", style.Tag())
	assert.Contains(t, style.Text(), ".lexile-open-dyslexic .lexile-line-focus p")

	marker := doc.GetElementByID(typeface.MarkerID)
	require.NotNil(t, marker)
	src, _ := marker.Attr("data-source")
	assert.Equal(t, "local", src)
}

func TestApply_EnableThenDisableRestoresDocument(t *testing.T) {
	cases := []domain.PreferenceSettings{
		settings(0, 1.2, 400),
		settings(4, 1.6, 700),
		settings(8, 2, 900),
		settings(0.5, 1, 300),
	}

	for _, s := range cases {
		doc := parsePage(t)
		before := doc.String()

		a := NewApplier(localFonts())
		a.Apply(context.Background(), s, doc)
		require.NotEqual(t, before, doc.String())

		s.Enabled = false
		a.Apply(context.Background(), s, doc)
		assert.Equal(t, before, doc.String())
	}
}

func TestApply_ReenableLeavesOnlyLatest(t *testing.T) {
	a := NewApplier(localFonts())
	doc := parsePage(t)
	ctx := context.Background()

	a.Apply(ctx, settings(2, 1.4, 500), doc)
	a.Apply(ctx, settings(6, 1.8, 800), doc)

	got := State(doc)
	assert.Equal(t, settings(6, 1.8, 800), got)

	value, _ := doc.Body().Style("letter-spacing")
	assert.Equal(t, "6px", value)

	assert.Equal(t, 1, countByID(doc, StyleID))
	assert.Equal(t, 1, countByID(doc, typeface.MarkerID))
}

func TestApply_SameSettingsTwiceIsIdempotent(t *testing.T) {
	a := NewApplier(localFonts())
	doc := parsePage(t)
	ctx := context.Background()

	a.Apply(ctx, settings(3, 1.5, 600), doc)
	once := doc.String()
	a.Apply(ctx, settings(3, 1.5, 600), doc)

	assert.Equal(t, once, doc.String())
}

func TestApply_PriorityFallback(t *testing.T) {
	a := NewApplier(nil)
	doc := parsePage(t, dom.WithoutStylePriority())

	a.Apply(context.Background(), settings(4, 1.6, 700), doc)

	value, priority := doc.Body().Style("font-family")
	assert.Equal(t, FontStack, value)
	assert.Empty(t, priority)
	value, _ = doc.Root().Style("line-height")
	assert.Equal(t, "1.6", value)
}

func TestApply_CDNFallback(t *testing.T) {
	a := NewApplier(typeface.New(nil))
	doc := dom.New()

	a.Apply(context.Background(), settings(1, 1.3, 400), doc)

	marker := doc.GetElementByID(typeface.MarkerID)
	require.NotNil(t, marker)
	assert.Equal(t, "link", marker.Tag())
}

func TestApply_AsyncTypeface(t *testing.T) {
	a := NewApplier(localFonts(), WithAsyncTypeface())
	doc := dom.New()
	ctx, cancel := context.WithCancel(context.Background())

	a.Apply(ctx, settings(1, 1.3, 400), doc)
	cancel()
	a.Wait()

	assert.True(t, doc.Root().HasClass(ClassDyslexic))
	assert.NotNil(t, doc.GetElementByID(typeface.MarkerID), "load outlives the caller's context")
}

type gatedFonts struct {
	gate  chan struct{}
	block dom.Document
}

func (g *gatedFonts) EnsureTypefaceLoaded(_ context.Context, doc dom.Document) (typeface.FontSource, error) {
	if doc == g.block {
		<-g.gate
	}
	return typeface.SourceLocal, nil
}

func TestTrackTypefaceLoads_WaitsOnlyForOwnLoads(t *testing.T) {
	slow, fast := dom.New(), dom.New()
	fonts := &gatedFonts{gate: make(chan struct{}), block: slow}
	a := NewApplier(fonts, WithAsyncTypeface())

	slowCtx, waitSlow := TrackTypefaceLoads(context.Background())
	a.Apply(slowCtx, settings(1, 1.3, 400), slow)

	fastCtx, waitFast := TrackTypefaceLoads(context.Background())
	a.Apply(fastCtx, settings(2, 1.4, 500), fast)

	done := make(chan struct{})
	go func() {
		waitFast()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wait blocked on another document's load")
	}

	close(fonts.gate)
	waitSlow()
	a.Wait()
}

func TestTrackTypefaceLoads_NothingStarted(t *testing.T) {
	_, wait := TrackTypefaceLoads(context.Background())
	assert.NotPanics(t, wait)
}

func TestApply_NilDocument(t *testing.T) {
	a := NewApplier(nil)
	assert.NotPanics(t, func() {
		a.Apply(context.Background(), settings(1, 1.3, 400), nil)
	})
}

func TestApply_DisableOnUntouchedDocument(t *testing.T) {
	doc := parsePage(t)
	before := doc.String()

	NewApplier(nil).Apply(context.Background(), domain.DefaultSettings(), doc)

	assert.Equal(t, before, doc.String())
}

func TestToggle(t *testing.T) {
	got := Toggle(true, nil)
	want := domain.DefaultSettings()
	want.Enabled = true
	assert.Equal(t, want, got)

	last := settings(5, 1.7, 600)
	got = Toggle(false, &last)
	assert.False(t, got.Enabled)
	assert.Equal(t, 5.0, got.LetterSpacing)
	assert.True(t, last.Enabled, "input is not modified")
}

func TestState_Disabled(t *testing.T) {
	assert.Equal(t, domain.DefaultSettings(), State(dom.New()))
	assert.Equal(t, domain.DefaultSettings(), State(nil))
}
