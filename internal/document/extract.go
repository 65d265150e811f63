package document

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrEmptyText              = errors.New("document has no text")
)

const blockSelector = "p, div, br, li, tr, pre, blockquote, section, article, header, footer, " +
	"h1, h2, h3, h4, h5, h6, title"

var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
}

// ExtractText returns the plain text of an uploaded file. The declared content
// type wins; generic types fall back to the file extension.
func ExtractText(fileName string, contentType string, data []byte) (string, error) {
	mediaType := resolveMediaType(fileName, contentType)

	var text string

	switch mediaType {
	case "text/plain", "text/markdown", "text/x-markdown":
		text = string(data)
	case "text/html", "application/xhtml+xml":
		extracted, err := htmlText(data)
		if err != nil {
			return "", fmt.Errorf("extract HTML text: %w", err)
		}
		text = extracted
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}

	text = normalizeLines(strings.ToValidUTF8(text, ""))
	if text == "" {
		return "", ErrEmptyText
	}

	return text, nil
}

func resolveMediaType(fileName string, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}
	mediaType = strings.ToLower(mediaType)

	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
			return byExt
		}
	}

	if mediaType == "" {
		return "application/octet-stream"
	}

	return mediaType
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find(blockSelector).AfterHtml("\n")

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}

	return body.Text(), nil
}

func normalizeLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}

		out = append(out, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
