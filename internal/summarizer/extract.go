package summarizer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"
)

// Document kinds accepted for extraction.
const (
	KindPDF   = "pdf"
	KindHTML  = "html"
	KindPlain = "text"
)

var (
	// ErrNoText means the document contained no extractable text.
	ErrNoText = errors.New("could not extract text from document")
	// ErrUnsupportedType means the document type is not handled.
	ErrUnsupportedType = errors.New("unsupported document type")
)

var pdfMagic = []byte("%PDF-")

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(html|body|p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|article|section|table)[\s>/]`)

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// DetectKind picks the document kind from the declared content type, falling
// back to sniffing the content.
func DetectKind(contentType string, data []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return KindPDF, nil
	case "text/html", "application/xhtml+xml":
		return KindHTML, nil
	case "text/plain", "text/markdown":
		return KindPlain, nil
	}

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF, nil
	case strings.HasPrefix(http.DetectContentType(data), "text/html"):
		return KindHTML, nil
	case utf8.Valid(data):
		return KindPlain, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// ExtractText returns the readable text of a document.
func ExtractText(contentType string, data []byte) (string, error) {
	kind, err := DetectKind(contentType, data)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = pdfText(data)
	case KindHTML:
		text, err = htmlText(string(data))
	default:
		text = string(data)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// pdfText joins the plain text of every page with a space.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString(" ")
	}
	return sb.String(), nil
}

// htmlText converts HTML to Markdown, which keeps headings and lists readable
// for the model. Input without markup is returned unchanged.
func htmlText(s string) (string, error) {
	if !containsHTML(s) {
		return s, nil
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return markdown, nil
}
