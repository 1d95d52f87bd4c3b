package preferences

import (
	"strconv"

	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/typeface"
)

// Marker classes applied to both the root element and body.
const (
	ClassDyslexic  = "lexile-open-dyslexic"
	ClassLineFocus = "lexile-line-focus"
)

// StyleID is the id of the injected stylesheet.
const StyleID = "lexile-dyslexic-style"

// Custom properties set on the root element.
const (
	VarLetterSpacing = "--lexile-letter-spacing"
	VarLineHeight    = "--lexile-line-height"
	VarFontWeight    = "--lexile-font-weight"
)

// FontStack is the font-family value used by the stylesheet and inline overrides.
const FontStack = "'" + typeface.Family + "', system-ui, -apple-system, 'Segoe UI', Roboto, 'Helvetica Neue', Arial"

// Stylesheet selects the typeface for everything under the dyslexic class and
// draws the line-focus gradient only when both classes are present.
const Stylesheet = `
html.` + ClassDyslexic + `, body.` + ClassDyslexic + `, .` + ClassDyslexic + ` * {
  font-family: ` + FontStack + ` !important;
  letter-spacing: var(` + VarLetterSpacing + `, 0.04em) !important;
  line-height: var(` + VarLineHeight + `, 1.6) !important;
  font-weight: var(` + VarFontWeight + `, 400) !important;
}
.` + ClassDyslexic + ` .` + ClassLineFocus + ` .bionic-reading,
.` + ClassDyslexic + ` .` + ClassLineFocus + ` p {
  background: linear-gradient(transparent 70%, rgba(255,255,255,0.6) 70%);
}
`

var (
	markerClasses = []string{ClassDyslexic, ClassLineFocus}
	cssVariables  = []string{VarLetterSpacing, VarLineHeight, VarFontWeight}
	inlineProps   = []string{"font-family", "letter-spacing", "line-height", "font-weight"}
)

type declaration struct {
	property string
	value    string
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func variableDeclarations(s domain.PreferenceSettings) []declaration {
	return []declaration{
		{VarLetterSpacing, formatNumber(s.LetterSpacing) + "px"},
		{VarLineHeight, formatNumber(s.LineHeight)},
		{VarFontWeight, formatNumber(s.FontWeight)},
	}
}

func inlineDeclarations(s domain.PreferenceSettings) []declaration {
	return []declaration{
		{"font-family", FontStack},
		{"letter-spacing", formatNumber(s.LetterSpacing) + "px"},
		{"line-height", formatNumber(s.LineHeight)},
		{"font-weight", formatNumber(s.FontWeight)},
	}
}
