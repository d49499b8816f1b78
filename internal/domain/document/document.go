package document

import (
	"fmt"
	"sort"

	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
)

// NoToken is the group key of documents whose filename carries no case number.
const NoToken = ""

// Default fingerprinting parameters.
const (
	DefaultTrimPageThreshold = 50
	DefaultHeadPages         = 3
	DefaultTailPages         = 3
)

// UploadedDocument is one incoming file. It lives for a single upload request.
type UploadedDocument struct {
	Filename string
	Content  []byte
	Pages    int
	// Token is the upper-cased case number found in Filename, or NoToken.
	Token string

	full    Fingerprint
	hasFull bool
}

// NewUploadedDocument builds a document and parses its case token.
func NewUploadedDocument(filename string, content []byte, pages int) *UploadedDocument {
	tok, _ := caseno.FindToken(filename)
	return &UploadedDocument{Filename: filename, Content: content, Pages: pages, Token: tok}
}

// TextExtractor pulls plain text out of PDF content. pages are 1-based page
// numbers; nil means every page.
type TextExtractor interface {
	ExtractText(content []byte, pages []int) (string, error)
}

// FingerprintOptions tunes trimmed fingerprinting.
type FingerprintOptions struct {
	// TrimPageThreshold is the page count above which trimming applies.
	TrimPageThreshold int
	HeadPages         int
	TailPages         int
}

func (o *FingerprintOptions) applyDefaults() {
	if o.TrimPageThreshold <= 0 {
		o.TrimPageThreshold = DefaultTrimPageThreshold
	}
	if o.HeadPages <= 0 {
		o.HeadPages = DefaultHeadPages
	}
	if o.TailPages <= 0 {
		o.TailPages = DefaultTailPages
	}
}

// Fingerprinter computes full and trimmed fingerprints. Extraction errors
// degrade to empty text and are logged.
type Fingerprinter struct {
	extractor TextExtractor
	logger    logging.Logger
	opts      FingerprintOptions
}

// NewFingerprinter creates a Fingerprinter. Zero options take the defaults.
func NewFingerprinter(extractor TextExtractor, log logging.Logger, opts FingerprintOptions) *Fingerprinter {
	opts.applyDefaults()
	return &Fingerprinter{extractor: extractor, logger: log, opts: opts}
}

// NeedsTrim reports whether doc is long enough for trimmed comparisons.
func (f *Fingerprinter) NeedsTrim(doc *UploadedDocument) bool {
	return doc.Pages > f.opts.TrimPageThreshold
}

// Pages selects the pages to read. Untrimmed reads, and documents at or below
// the threshold, return nil for all pages. Trimmed reads of longer documents
// return the head and tail pages in order.
func (f *Fingerprinter) Pages(total int, trimmed bool) []int {
	if !trimmed || total <= f.opts.TrimPageThreshold {
		return nil
	}
	set := make(map[int]struct{}, f.opts.HeadPages+f.opts.TailPages)
	for p := 1; p <= f.opts.HeadPages && p <= total; p++ {
		set[p] = struct{}{}
	}
	for p := total - f.opts.TailPages + 1; p <= total; p++ {
		if p >= 1 {
			set[p] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Full returns the whole-document fingerprint, computing it at most once.
func (f *Fingerprinter) Full(doc *UploadedDocument) Fingerprint {
	if doc.hasFull {
		return doc.full
	}
	doc.full = f.compute(doc, false)
	doc.hasFull = true
	return doc.full
}

// Trimmed returns the head-and-tail fingerprint. It is recomputed on every call.
func (f *Fingerprinter) Trimmed(doc *UploadedDocument) Fingerprint {
	return f.compute(doc, true)
}

func (f *Fingerprinter) compute(doc *UploadedDocument, trimmed bool) Fingerprint {
	pages := f.Pages(doc.Pages, trimmed)
	mode := "full"
	if pages != nil {
		mode = "trimmed"
	}
	text, err := f.extractor.ExtractText(doc.Content, pages)
	if err != nil {
		f.logger.Error("text extraction failed",
			logging.String("filename", doc.Filename),
			logging.String("mode", mode),
			logging.Err(err))
		text = ""
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		f.logger.Warn("empty text, degenerate fingerprint",
			logging.String("filename", doc.Filename),
			logging.String("mode", mode))
	}
	fp := Simhash(tokens)
	f.logger.Debug("fingerprint computed",
		logging.String("filename", doc.Filename),
		logging.String("mode", mode),
		logging.Int("tokens", len(tokens)),
		logging.String("fingerprint", fmt.Sprintf("%#016x", uint64(fp))))
	return fp
}
