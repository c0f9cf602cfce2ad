// Package pdfdoc extracts the text layer and link annotations from PDF files.
package pdfdoc

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Content holds everything pulled out of a single document: the page texts
// concatenated in document order and every URI found in link annotations,
// in encounter order. Duplicate links are preserved.
type Content struct {
	Text  string
	Links []string
}

// ReadError indicates that a file could not be opened or parsed as a PDF.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading pdf %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Extract opens the document at path and returns its text and links.
// Pages without an extractable text layer contribute nothing. The
// underlying library panics on some malformed inputs, so extraction
// recovers and reports those as a *ReadError too.
func Extract(path string) (content *Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = &ReadError{Path: path, Err: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	var text strings.Builder
	var links []string

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err == nil {
			text.WriteString(pageText)
		}

		links = append(links, pageLinks(page)...)
	}

	return &Content{Text: text.String(), Links: links}, nil
}

// pageLinks walks the page annotation array and collects every URI action
// target, preserving annotation order.
func pageLinks(page pdf.Page) []string {
	annots := page.V.Key("Annots")
	if annots.Kind() != pdf.Array {
		return nil
	}

	var links []string
	for i := 0; i < annots.Len(); i++ {
		action := annots.Index(i).Key("A")
		if action.Kind() != pdf.Dict {
			continue
		}

		uri := action.Key("URI")
		if uri.Kind() != pdf.String {
			continue
		}

		links = append(links, uri.Text())
	}

	return links
}
