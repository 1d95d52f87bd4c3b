// Package typeface makes the OpenDyslexic typeface available to a document.
//
// Loading is two-phase: EnsureTypefaceLoaded decides where the faces come
// from and records the decision as a marker element in <head>; callers may
// await it or run it in the background while layout classes are applied.
package typeface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexileapp/lexile-server/internal/dom"
)

// MarkerID is the id of the element recording how the typeface was sourced.
const MarkerID = "lexile-dyslexic-font"

// Family is the CSS font-family name the faces are registered under.
const Family = "OpenDyslexic"

// DefaultCDNStylesheet is linked when local faces are unavailable.
const DefaultCDNStylesheet = "https://cdn.jsdelivr.net/gh/antijingoist/open-dyslexic/webkit/OpenDyslexic.css"

// DefaultPublicPath is the URL prefix local face files are served under.
const DefaultPublicPath = "/fonts/"

// FontSource records where the typeface came from.
type FontSource string

// Font sources.
const (
	// SourceExisting means a marker was already present; nothing was loaded.
	SourceExisting FontSource = "existing"
	SourceLocal    FontSource = "local"
	SourceCDN      FontSource = "cdn"
)

// Face is one weight of the typeface.
type Face struct {
	Weight int
	File   string
}

var (
	// Regular must load for the local path to be used.
	Regular = Face{Weight: 400, File: "OpenDyslexic-Regular.woff2"}
	// Bold is optional; its failure is tolerated.
	Bold = Face{Weight: 700, File: "OpenDyslexic-Bold.woff2"}
)

// ErrUnsupported is returned by a FaceLoader that cannot load faces at all.
var ErrUnsupported = errors.New("typeface: font loading not supported")

// FaceLoader loads a single face.
type FaceLoader interface {
	LoadFace(ctx context.Context, face Face) error
}

// Loader chooses and records the typeface source for documents.
type Loader struct {
	faces      FaceLoader
	cdn        string
	publicPath string
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCDNStylesheet overrides the fallback stylesheet URL.
func WithCDNStylesheet(url string) Option {
	return func(l *Loader) {
		if url != "" {
			l.cdn = url
		}
	}
}

// WithPublicPath overrides the URL prefix used in local @font-face rules.
func WithPublicPath(prefix string) Option {
	return func(l *Loader) {
		if prefix != "" {
			l.publicPath = strings.TrimSuffix(prefix, "/") + "/"
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// New creates a Loader. A nil FaceLoader always falls back to the CDN.
func New(faces FaceLoader, opts ...Option) *Loader {
	l := &Loader{
		faces:      faces,
		cdn:        DefaultCDNStylesheet,
		publicPath: DefaultPublicPath,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EnsureTypefaceLoaded makes the typeface available to doc exactly once.
//
// If the marker element exists, it returns SourceExisting. Otherwise it
// loads the regular face then the bold face; regular success records a local
// marker. Any regular failure, including ErrUnsupported, links the CDN
// stylesheet instead. Load failures never surface as errors; the error result
// is reserved for a nil document or a context cancelled before loading began.
func (l *Loader) EnsureTypefaceLoaded(ctx context.Context, doc dom.Document) (FontSource, error) {
	if doc == nil {
		return "", errors.New("typeface: nil document")
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("typeface: %w", err)
	}
	if doc.GetElementByID(MarkerID) != nil {
		return SourceExisting, nil
	}

	loaded, err := l.loadLocal(ctx)
	if err != nil {
		l.logger.Debug("local typeface unavailable, using CDN", "error", err)
		return l.insert(doc, l.cdnMarker(doc), SourceCDN), nil
	}
	return l.insert(doc, l.localMarker(doc, loaded), SourceLocal), nil
}

func (l *Loader) loadLocal(ctx context.Context) ([]Face, error) {
	if l.faces == nil {
		return nil, ErrUnsupported
	}
	if err := l.faces.LoadFace(ctx, Regular); err != nil {
		return nil, fmt.Errorf("load %s: %w", Regular.File, err)
	}
	loaded := []Face{Regular}
	if err := l.faces.LoadFace(ctx, Bold); err != nil {
		l.logger.Debug("bold face failed to load", "file", Bold.File, "error", err)
	} else {
		loaded = append(loaded, Bold)
	}
	return loaded, nil
}

// insert adds the marker unless a concurrent call won the race, in which case
// the winner's source stands.
func (l *Loader) insert(doc dom.Document, marker dom.Element, src FontSource) FontSource {
	if !doc.AppendUnique(doc.Head(), marker) {
		return SourceExisting
	}
	l.logger.Debug("typeface marker inserted", "source", string(src))
	return src
}

func (l *Loader) cdnMarker(doc dom.Document) dom.Element {
	link := doc.CreateElement("link")
	link.SetAttr("id", MarkerID)
	link.SetAttr("rel", "stylesheet")
	link.SetAttr("href", l.cdn)
	link.SetAttr("data-source", string(SourceCDN))
	return link
}

// localMarker is a <style> carrying @font-face rules for the loaded faces, so
// a rendered document references the same files the loader validated.
func (l *Loader) localMarker(doc dom.Document, faces []Face) dom.Element {
	style := doc.CreateElement("style")
	style.SetAttr("id", MarkerID)
	style.SetAttr("data-source", string(SourceLocal))
	style.SetText(FontFaceCSS(l.publicPath, faces))
	return style
}

// FontFaceCSS returns @font-face rules for faces served under publicPath.
func FontFaceCSS(publicPath string, faces []Face) string {
	var sb strings.Builder
	for _, f := range faces {
		fmt.Fprintf(&sb, "@font-face { font-family: '%s'; src: url('%s%s') format('woff2'); font-weight: %d; font-style: normal; font-display: swap; }\n",
			Family, publicPath, f.File, f.Weight)
	}
	return sb.String()
}
