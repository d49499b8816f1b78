package upload

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// Dedupe implements Service. Files are read in name order so a seeded run is
// reproducible.
func (s *serviceImpl) Dedupe(ctx context.Context, dir string) (*DryRunReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "read directory").WithDetail(dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && s.accepts(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]IncomingFile, 0, len(names))
	for _, n := range names {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "dedupe cancelled")
		}
		content, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			s.logger.Warn("skipping unreadable file", logging.String("filename", n), logging.Err(err))
			continue
		}
		files = append(files, IncomingFile{Filename: n, Content: content})
	}

	docs, _ := s.load(files)
	report := &DryRunReport{Dir: dir, Files: len(docs), Clusters: make([]ClusterSummary, 0)}
	if len(docs) == 0 {
		return report, nil
	}
	for _, o := range s.dedup.Run(docs) {
		members := make([]string, len(o.Cluster.Documents))
		for i, d := range o.Cluster.Documents {
			members[i] = d.Filename
		}
		report.Clusters = append(report.Clusters, ClusterSummary{
			Token:    o.Token,
			Members:  members,
			Selected: o.Selected.Filename,
			Pages:    o.Selected.Pages,
		})
	}
	return report, nil
}
