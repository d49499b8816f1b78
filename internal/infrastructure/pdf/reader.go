// Package pdf reads uploaded filings: page counts and the embedded content
// hash through pdfcpu, per-page plain text through ledongthuc/pdf.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// HashProperty is the custom Info-dictionary key holding the SHA-256 of the
// filing, stamped by the court notification downloader.
const HashProperty = "HashSHA256"

var disableConfigDir sync.Once

// Reader implements document.TextExtractor and the upload hash and page
// readers. It is safe for concurrent use.
type Reader struct {
	logger logging.Logger
}

// NewReader creates a Reader. pdfcpu's on-disk configuration directory is
// disabled process-wide on first use.
func NewReader(log logging.Logger) *Reader {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Reader{logger: log}
}

func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in content.
func (r *Reader) PageCount(content []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(content), relaxedConfig())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodePDFUnreadable, "count pages")
	}
	return n, nil
}

// ContentHash returns the HashSHA256 Info entry, or "" when the document
// carries none.
func (r *Reader) ContentHash(content []byte) (string, error) {
	props, err := api.Properties(bytes.NewReader(content), relaxedConfig())
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodePDFUnreadable, "read properties")
	}
	for k, v := range props {
		if strings.TrimPrefix(k, "/") == HashProperty {
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}

// ExtractText returns the plain text of the given 1-based pages concatenated
// in order, with no separator; nil pages means the whole document. Pages out
// of range or without content contribute nothing. A page that cannot be read
// ends the extraction and the text read so far is returned.
func (r *Reader) ExtractText(content []byte, pages []int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = errors.New(errors.ErrCodePDFUnreadable, "extract text").WithDetail(fmt.Sprint(rec))
		}
	}()

	doc, err := lpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodePDFUnreadable, "open pdf")
	}
	total := doc.NumPage()
	if pages == nil {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	text, stopped, perr := collectText(pages, total, func(n int) (string, error) {
		p := doc.Page(n)
		if p.V.IsNull() {
			return "", nil
		}
		return p.GetPlainText(nil)
	})
	if perr != nil {
		r.logger.Warn("text extraction stopped", logging.Int("page", stopped), logging.Int("chars", len(text)), logging.Err(perr))
	}
	return text, nil
}

// collectText appends pageText of each in-range page until one fails, and
// returns the text so far with the failing page and its error. A panic in
// pageText counts as a failure.
func collectText(pages []int, total int, pageText func(n int) (string, error)) (string, int, error) {
	var b strings.Builder
	for _, n := range pages {
		if n < 1 || n > total {
			continue
		}
		s, err := safePageText(pageText, n)
		if err != nil {
			return b.String(), n, err
		}
		b.WriteString(s)
	}
	return b.String(), 0, nil
}

func safePageText(pageText func(n int) (string, error), n int) (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s = ""
			err = errors.New(errors.ErrCodePDFUnreadable, "extract text").WithDetail(fmt.Sprint(rec))
		}
	}()
	return pageText(n)
}
