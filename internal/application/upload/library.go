package upload

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// ArchiveRemover drops the mirrored copy of a deleted filing.
type ArchiveRemover interface {
	Remove(ctx context.Context, token, filename string) error
}

// Library manages the filings already persisted in the upload directory and
// resolves download paths against the allowed base directories.
type Library struct {
	dir     string
	bases   []string
	remover ArchiveRemover
	logger  logging.Logger
}

// NewLibrary creates a Library over dir. extraBases are further directories
// downloads may be served from. remover may be nil.
func NewLibrary(dir string, extraBases []string, remover ArchiveRemover, log logging.Logger) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "resolve upload dir")
	}
	bases := []string{abs}
	for _, b := range extraBases {
		if strings.TrimSpace(b) == "" {
			continue
		}
		ab, err := filepath.Abs(b)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "resolve download base").WithDetail(b)
		}
		bases = append(bases, ab)
	}
	return &Library{dir: abs, bases: bases, remover: remover, logger: log}, nil
}

// DeleteMatching removes every .pdf in the upload directory whose name
// contains number, case-insensitively, and returns the deleted names.
func (l *Library) DeleteMatching(ctx context.Context, number string) ([]string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errors.InvalidParam("registro_ppu es requerido")
	}
	return l.DeleteMatchingAny(ctx, []string{number})
}

// DeleteMatchingAny removes every .pdf whose name contains any of numbers,
// then its archived copy when a remover is set. The first local removal
// failure aborts the sweep; archive failures are only logged.
func (l *Library) DeleteMatchingAny(ctx context.Context, numbers []string) ([]string, error) {
	needles := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			needles = append(needles, n)
		}
	}
	if len(needles) == 0 {
		return nil, errors.InvalidParam("Se requiere una lista de registros PPU")
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "list upload dir")
	}
	deleted := make([]string, 0)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		upper := strings.ToUpper(name)
		for _, n := range needles {
			if !strings.Contains(upper, n) {
				continue
			}
			if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
				return deleted, errors.Wrap(err, errors.ErrCodeInternal, "No se pudo eliminar "+name)
			}
			deleted = append(deleted, name)
			l.removeArchived(ctx, name)
			break
		}
	}
	sort.Strings(deleted)
	l.logger.Info("filings deleted", logging.Strings("numbers", needles), logging.Int("count", len(deleted)))
	return deleted, nil
}

func (l *Library) removeArchived(ctx context.Context, name string) {
	if l.remover == nil {
		return
	}
	token, _ := caseno.FindToken(name)
	if err := l.remover.Remove(ctx, token, name); err != nil {
		l.logger.Warn("archive removal failed", logging.String("filename", name), logging.Err(err))
	}
}

// Resolve returns the absolute path of p if it lies inside an allowed base
// and exists as a regular file.
func (l *Library) Resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.InvalidParam("Ruta es requerida")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.New(errors.ErrCodePathEscape, "Ruta inválida").WithDetail(p)
	}
	allowed := false
	for _, b := range l.bases {
		if within(b, abs) {
			allowed = true
			break
		}
	}
	if !allowed {
		l.logger.Warn("download outside allowed bases", logging.String("path", abs))
		return "", errors.New(errors.ErrCodePathEscape, "Ruta inválida").WithDetail(p)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", errors.New(errors.ErrCodePDFNotFound, "Archivo no encontrado").WithDetail(p)
	}
	return abs, nil
}
