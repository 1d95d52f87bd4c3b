package dom

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_HasSections(t *testing.T) {
	d := New()

	require.NotNil(t, d.Root())
	assert.Equal(t, "html", d.Root().Tag())
	assert.Equal(t, "head", d.Head().Tag())
	assert.Equal(t, "body", d.Body().Tag())
}

func TestParse_FragmentGetsSections(t *testing.T) {
	d, err := ParseString(`<p id="intro">Hello</p>`)
	require.NoError(t, err)

	assert.Equal(t, "body", d.Body().Tag())
	el := d.GetElementByID("intro")
	require.NotNil(t, el)
	assert.Equal(t, "Hello", el.Text())
	assert.Nil(t, d.GetElementByID("missing"))
}

func TestClasses(t *testing.T) {
	d, err := ParseString(`<html class="theme-dark"><body></body></html>`)
	require.NoError(t, err)
	root := d.Root()

	root.AddClass("lexile-open-dyslexic")
	root.AddClass("lexile-open-dyslexic")
	assert.True(t, root.HasClass("lexile-open-dyslexic"))
	v, _ := root.Attr("class")
	assert.Equal(t, "theme-dark lexile-open-dyslexic", v)

	root.RemoveClass("lexile-open-dyslexic")
	v, _ = root.Attr("class")
	assert.Equal(t, "theme-dark", v)

	body := d.Body()
	body.AddClass("x")
	body.RemoveClass("x")
	_, ok := body.Attr("class")
	assert.False(t, ok, "emptied class attribute should be dropped")
}

func TestStyles(t *testing.T) {
	d, err := ParseString(`<html style="color:red"><body></body></html>`)
	require.NoError(t, err)
	root := d.Root()

	require.NoError(t, root.SetStyle("line-height", "1.6", PriorityImportant))
	value, priority := root.Style("line-height")
	assert.Equal(t, "1.6", value)
	assert.Equal(t, PriorityImportant, priority)

	value, priority = root.Style("color")
	assert.Equal(t, "red", value)
	assert.Empty(t, priority)

	require.NoError(t, root.SetStyle("line-height", "2", ""))
	value, priority = root.Style("line-height")
	assert.Equal(t, "2", value)
	assert.Empty(t, priority)

	root.RemoveStyle("line-height")
	raw, _ := root.Attr("style")
	assert.Equal(t, "color:red", raw, "untouched declarations keep their source text")

	root.RemoveStyle("color")
	_, ok := root.Attr("style")
	assert.False(t, ok)
}

func TestSetStyle_CustomPropertyAndQuotes(t *testing.T) {
	d := New()
	root := d.Root()

	require.NoError(t, root.SetStyle("--lexile-letter-spacing", "4px", ""))
	require.NoError(t, root.SetStyle("font-family", "'OpenDyslexic', system-ui", PriorityImportant))

	value, _ := root.Style("--lexile-letter-spacing")
	assert.Equal(t, "4px", value)
	value, _ = root.Style("font-family")
	assert.Equal(t, "'OpenDyslexic', system-ui", value)

	reparsed, err := ParseString(d.String())
	require.NoError(t, err)
	value, priority := reparsed.Root().Style("font-family")
	assert.Equal(t, "'OpenDyslexic', system-ui", value)
	assert.Equal(t, PriorityImportant, priority)
}

func TestSetStyle_PriorityRejected(t *testing.T) {
	d := New(WithoutStylePriority())
	body := d.Body()

	err := body.SetStyle("font-weight", "700", PriorityImportant)
	require.ErrorIs(t, err, ErrPriorityUnsupported)

	require.NoError(t, body.SetStyle("font-weight", "700", ""))
	value, _ := body.Style("font-weight")
	assert.Equal(t, "700", value)
}

func TestSetStyle_UnknownPriority(t *testing.T) {
	assert.Error(t, New().Root().SetStyle("color", "red", "urgent"))
}

func TestAppendUnique(t *testing.T) {
	d := New()

	style := d.CreateElement("style")
	style.SetAttr("id", "lexile-dyslexic-style")
	style.SetText(".a { color: red; }")
	assert.True(t, d.AppendUnique(d.Head(), style))

	dup := d.CreateElement("style")
	dup.SetAttr("id", "lexile-dyslexic-style")
	assert.False(t, d.AppendUnique(d.Head(), dup))

	got := d.GetElementByID("lexile-dyslexic-style")
	require.NotNil(t, got)
	assert.Equal(t, ".a { color: red; }", got.Text())

	got.Remove()
	assert.Nil(t, d.GetElementByID("lexile-dyslexic-style"))
}

func TestAppendUnique_ForeignElement(t *testing.T) {
	a, b := New(), New()
	el := b.CreateElement("meta")
	assert.False(t, a.AppendUnique(a.Head(), el))
}

func TestAppendUnique_Concurrent(t *testing.T) {
	d := New()

	var wg sync.WaitGroup
	inserted := make(chan bool, 50)
	for range 50 {
		wg.Go(func() {
			el := d.CreateElement("meta")
			el.SetAttr("id", "lexile-dyslexic-font")
			inserted <- d.AppendUnique(d.Head(), el)
		})
	}
	wg.Wait()
	close(inserted)

	count := 0
	for ok := range inserted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRender_RoundTrip(t *testing.T) {
	src := `<!DOCTYPE html><html lang="en"><head><title>t</title></head><body><p>x</p></body></html>`
	d, err := ParseString(src)
	require.NoError(t, err)

	assert.Equal(t, src, d.String())
}

func TestStyle_RoundTripKeepsSourceText(t *testing.T) {
	tests := []string{
		`color: red;`,
		`color:red`,
		`color: red; margin:0 !important;`,
	}

	for _, style := range tests {
		t.Run(style, func(t *testing.T) {
			src := `<html><head></head><body style="` + style + `"><p>x</p></body></html>`
			d, err := ParseString(src)
			require.NoError(t, err)
			assert.Equal(t, src, d.String())

			body := d.Body()
			require.NoError(t, body.SetStyle("color", "red", ""))
			assert.Equal(t, src, d.String(), "re-setting an identical declaration")

			require.NoError(t, body.SetStyle("letter-spacing", "2px", ""))
			body.RemoveStyle("letter-spacing")
			assert.Equal(t, src, d.String(), "set then remove")
		})
	}
}
