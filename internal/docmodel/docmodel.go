package docmodel

import (
	stdErrors "errors"
	"iter"
	"os"

	"github.com/inful/mdfp"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/frontmatter"
	"git.home.luguber.info/inful/livedoc/internal/markdown"
)

// Options controls how a Document is built.
type Options struct {
	// DisableGrouping puts every top-level node into a single cell. Used to
	// check that grouping never drops or reorders content.
	DisableGrouping bool

	// Tokenizer overrides the default markdown tokenizer.
	Tokenizer *markdown.Tokenizer
}

// Document is the result of building a markdown source: its cells plus the
// side outputs of the build.
type Document struct {
	Cells []Cell
	Title string
	Meta  frontmatter.Meta

	// Footnotes maps footnote labels to their display numbers.
	Footnotes map[string]int

	// Warnings collects recoverable problems, such as unreadable frontmatter.
	Warnings []error

	fingerprint string
}

// Parse builds a Document from raw file content. YAML frontmatter is removed
// before tokenizing; its title, when set, replaces the heading-derived title.
func Parse(content []byte, opts Options) (*Document, error) {
	var warnings []error
	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		// An unterminated block is treated as ordinary markdown while it is being typed.
		warnings = append(warnings, errors.WrapError(err, errors.CategoryParse, "frontmatter ignored"))
		fm, body, had = nil, content, false
	}

	var meta frontmatter.Meta
	if had {
		meta, err = frontmatter.Decode(fm)
		if err != nil {
			warnings = append(warnings, errors.WrapError(err, errors.CategoryParse, "frontmatter ignored"))
		}
	}

	tok := opts.Tokenizer
	if tok == nil {
		tok = markdown.NewTokenizer()
	}

	doc, err := BuildEvents(tok.Events(body), opts)
	if err != nil {
		return nil, err
	}
	doc.Meta = meta
	doc.Warnings = warnings
	if meta.Title != "" {
		doc.Title = meta.Title
	}
	doc.fingerprint = mdfp.CalculateFingerprintFromParts(string(fm), string(body))
	return doc, nil
}

// ParseFile reads a file from disk and parses it into a Document.
func ParseFile(path string, opts Options) (*Document, error) {
	// #nosec G304 -- path is the document the user asked to render.
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DocumentReadError(path, err)
	}

	doc, err := Parse(content, opts)
	if err != nil {
		if ce, ok := errors.As(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to parse document").
			WithContext("path", path).
			Build()
	}
	return doc, nil
}

// BuildEvents builds a Document from an event stream. Frontmatter handling
// and fingerprinting are left to Parse.
func BuildEvents(seq iter.Seq[markdown.Event], opts Options) (*Document, error) {
	b := NewBuilder(opts)
	if err := b.Consume(seq); err != nil {
		return nil, err
	}
	return &Document{
		Cells:     b.Cells(),
		Title:     b.Title(),
		Footnotes: b.Footnotes(),
	}, nil
}

// Nodes flattens the cells into the top-level node sequence.
func (d *Document) Nodes() []*html.Node {
	var out []*html.Node
	for _, c := range d.Cells {
		out = append(out, c.Nodes...)
	}
	return out
}

// Fingerprint returns a content hash of the parsed source. Documents built
// with BuildEvents have no fingerprint.
func (d *Document) Fingerprint() string {
	return d.fingerprint
}

// IsMalformed reports whether err is a builder contract violation.
func IsMalformed(err error) bool {
	return stdErrors.Is(err, ErrMalformedEventStream)
}
