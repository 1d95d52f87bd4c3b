// Package preferences keeps a document's typography in line with a profile's
// accessibility settings and persists those settings with the screening log.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/lexileapp/lexile-server/internal/dom"
	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/typeface"
)

// TypefaceEnsurer makes the custom typeface available to a document.
type TypefaceEnsurer interface {
	EnsureTypefaceLoaded(ctx context.Context, doc dom.Document) (typeface.FontSource, error)
}

// Applier synchronizes a document with a settings record.
type Applier struct {
	fonts  TypefaceEnsurer
	async  bool
	logger *slog.Logger

	pending sync.WaitGroup
}

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithAsyncTypeface loads the typeface in the background instead of before
// classes and properties are applied. Text may reflow once the face arrives.
func WithAsyncTypeface() ApplierOption {
	return func(a *Applier) { a.async = true }
}

// WithApplierLogger sets the logger.
func WithApplierLogger(logger *slog.Logger) ApplierOption {
	return func(a *Applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewApplier creates an Applier. A nil ensurer skips typeface loading.
func NewApplier(fonts TypefaceEnsurer, opts ...ApplierOption) *Applier {
	a := &Applier{
		fonts:  fonts,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply makes doc reflect settings. It never fails: every problem is logged
// and the remaining steps still run.
func (a *Applier) Apply(ctx context.Context, settings domain.PreferenceSettings, doc dom.Document) {
	if doc == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("applying preferences panicked", "panic", fmt.Sprint(r))
		}
	}()

	if !settings.Enabled {
		a.disable(doc)
		return
	}
	a.enable(ctx, settings, doc)
}

// Wait blocks until every background typeface load has finished. It is meant
// for shutdown; request paths wait through TrackTypefaceLoads.
func (a *Applier) Wait() {
	a.pending.Wait()
}

type loadTrackerKey struct{}

// TrackTypefaceLoads returns a context under which background typeface loads
// started by Apply are recorded, and a wait func that blocks until those
// loads, and only those, have finished.
func TrackTypefaceLoads(ctx context.Context) (context.Context, func()) {
	wg := &sync.WaitGroup{}
	return context.WithValue(ctx, loadTrackerKey{}, wg), wg.Wait
}

func (a *Applier) disable(doc dom.Document) {
	root, body := doc.Root(), doc.Body()
	for _, el := range []dom.Element{root, body} {
		for _, class := range markerClasses {
			el.RemoveClass(class)
		}
		for _, prop := range inlineProps {
			el.RemoveStyle(prop)
		}
	}
	for _, v := range cssVariables {
		root.RemoveStyle(v)
	}
	for _, id := range []string{StyleID, typeface.MarkerID} {
		if el := doc.GetElementByID(id); el != nil {
			el.Remove()
		}
	}
	a.logger.Debug("preferences disabled")
}

func (a *Applier) enable(ctx context.Context, settings domain.PreferenceSettings, doc dom.Document) {
	a.ensureTypeface(ctx, doc)

	root, body := doc.Root(), doc.Body()
	for _, el := range []dom.Element{root, body} {
		for _, class := range markerClasses {
			el.AddClass(class)
		}
	}

	for _, d := range variableDeclarations(settings) {
		if err := root.SetStyle(d.property, d.value, ""); err != nil {
			a.logger.Warn("failed to set css variable", "property", d.property, "error", err)
		}
	}

	style := doc.CreateElement("style")
	style.SetAttr("id", StyleID)
	style.SetText(Stylesheet)
	doc.AppendUnique(doc.Head(), style)

	for _, el := range []dom.Element{root, body} {
		for _, d := range inlineDeclarations(settings) {
			a.setImportant(el, d)
		}
	}

	a.logger.Debug("preferences applied",
		"letter_spacing", settings.LetterSpacing,
		"line_height", settings.LineHeight,
		"font_weight", settings.FontWeight,
	)
}

// setImportant sets an inline declaration with important priority, falling
// back to a plain declaration when the document rejects priorities.
func (a *Applier) setImportant(el dom.Element, d declaration) {
	err := el.SetStyle(d.property, d.value, dom.PriorityImportant)
	if err == nil {
		return
	}
	if !errors.Is(err, dom.ErrPriorityUnsupported) {
		a.logger.Debug("prioritized inline style rejected", "property", d.property, "error", err)
	}
	if err := el.SetStyle(d.property, d.value, ""); err != nil {
		a.logger.Warn("failed to set inline style", "tag", el.Tag(), "property", d.property, "error", err)
	}
}

func (a *Applier) ensureTypeface(ctx context.Context, doc dom.Document) {
	if a.fonts == nil || doc.GetElementByID(typeface.MarkerID) != nil {
		return
	}
	if !a.async {
		a.loadTypeface(ctx, doc)
		return
	}
	// No cancellation: a load finishing after a disable leaves a harmless marker.
	bg := context.WithoutCancel(ctx)
	tracker, _ := ctx.Value(loadTrackerKey{}).(*sync.WaitGroup)
	if tracker != nil {
		tracker.Add(1)
	}
	a.pending.Go(func() {
		if tracker != nil {
			defer tracker.Done()
		}
		a.loadTypeface(bg, doc)
	})
}

func (a *Applier) loadTypeface(ctx context.Context, doc dom.Document) {
	src, err := a.fonts.EnsureTypefaceLoaded(ctx, doc)
	if err != nil {
		a.logger.Warn("typeface not loaded", "error", err)
		return
	}
	a.logger.Debug("typeface ready", "source", string(src))
}

// Toggle builds the record for a caller that only knows whether the feature
// should be on: lastKnown with Enabled overwritten, or the defaults.
func Toggle(enabled bool, lastKnown *domain.PreferenceSettings) domain.PreferenceSettings {
	s := domain.DefaultSettings()
	if lastKnown != nil {
		s = *lastKnown
	}
	s.Enabled = enabled
	return s
}

// State reads the settings currently applied to doc. A document without the
// dyslexic class on its root reports the disabled defaults.
func State(doc dom.Document) domain.PreferenceSettings {
	s := domain.DefaultSettings()
	if doc == nil {
		return s
	}
	root := doc.Root()
	if !root.HasClass(ClassDyslexic) {
		return s
	}
	s.Enabled = true
	if v, _ := root.Style(VarLetterSpacing); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
			s.LetterSpacing = f
		}
	}
	if v, _ := root.Style(VarLineHeight); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.LineHeight = f
		}
	}
	if v, _ := root.Style(VarFontWeight); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.FontWeight = f
		}
	}
	return s
}
