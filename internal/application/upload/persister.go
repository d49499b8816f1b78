package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/legajos-penal/internal/domain/document"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// HashReader reads the content hash embedded in a PDF's metadata.
type HashReader interface {
	ContentHash(content []byte) (string, error)
}

// NotificationLookup maps a content hash to its notification date
// (YYYY-MM-DD), or "" when unknown.
type NotificationLookup interface {
	NotificationDate(ctx context.Context, hash string) (string, error)
}

// Archiver mirrors a persisted filing to secondary storage.
type Archiver interface {
	Put(ctx context.Context, token, filename string, content []byte, hash string) error
}

// Persister writes selected filings into the upload directory and looks up
// their notification dates.
type Persister struct {
	dir      string
	hashes   HashReader
	lookup   NotificationLookup
	archiver Archiver
	logger   logging.Logger
}

// NewPersister creates the upload directory if needed. lookup and archiver
// may be nil.
func NewPersister(dir string, hashes HashReader, lookup NotificationLookup, archiver Archiver, log logging.Logger) (*Persister, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "resolve upload dir")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "create upload dir")
	}
	return &Persister{dir: abs, hashes: hashes, lookup: lookup, archiver: archiver, logger: log}, nil
}

// Dir returns the absolute upload directory.
func (p *Persister) Dir() string { return p.dir }

// Persist writes doc and returns its report entry. Hash, lookup and archive
// failures are logged and leave the corresponding fields empty.
func (p *Persister) Persist(ctx context.Context, token string, doc *document.UploadedDocument) (*Result, error) {
	path, err := containedPath(p.dir, doc.Filename)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistFailed, "write filing").WithDetail(doc.Filename)
	}

	res := &Result{Filename: doc.Filename}
	if p.hashes != nil {
		hash, herr := p.hashes.ContentHash(doc.Content)
		if herr != nil {
			p.logger.Warn("content hash unreadable", logging.String("filename", doc.Filename), logging.Err(herr))
		}
		res.HashSHA = hash
	}
	if res.HashSHA != "" && p.lookup != nil {
		date, lerr := p.lookup.NotificationDate(ctx, res.HashSHA)
		if lerr != nil {
			p.logger.Warn("notification lookup failed", logging.String("hash", res.HashSHA), logging.Err(lerr))
		}
		res.NotificationDate = date
	}
	if p.archiver != nil {
		if aerr := p.archiver.Put(ctx, token, doc.Filename, doc.Content, res.HashSHA); aerr != nil {
			p.logger.Warn("archive mirror failed", logging.String("filename", doc.Filename), logging.Err(aerr))
		}
	}

	p.logger.Info("filing persisted",
		logging.String("filename", doc.Filename),
		logging.String("path", path),
		logging.Bool("hash_found", res.HashSHA != ""),
		logging.String("notification_date", res.NotificationDate))
	return res, nil
}

// containedPath joins name onto base and fails unless the result stays
// strictly inside base. base must be absolute and clean.
func containedPath(base, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New(errors.ErrCodePathEscape, "Ruta inválida")
	}
	target := filepath.Join(base, name)
	if !within(base, target) {
		return "", errors.New(errors.ErrCodePathEscape, "Ruta inválida").WithDetail(name)
	}
	return target, nil
}

// within reports whether abs target lies strictly below abs base.
func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
