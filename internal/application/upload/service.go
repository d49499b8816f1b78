// Package upload runs the bulk-upload pipeline: extension filtering, page
// counting, near-duplicate clustering per case, selection of one filing per
// cluster and persistence of the survivors.
package upload

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/legajos-penal/internal/domain/document"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// CompletedMessage is the fixed message of a successful upload report.
const CompletedMessage = "Carga completada"

// Metric outcome labels.
const (
	OutcomeReceived  = "received"
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeSelected  = "selected"
	OutcomePersisted = "persisted"
	OutcomeFailed    = "failed"
)

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// PageCounter counts the pages of a PDF.
type PageCounter interface {
	PageCount(content []byte) (int, error)
}

// Metrics receives pipeline counters.
type Metrics interface {
	RecordUploadFiles(outcome string, n int)
	RecordUploadClusters(n int)
	ObserveUploadDuration(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordUploadFiles(string, int)        {}
func (nopMetrics) RecordUploadClusters(int)             {}
func (nopMetrics) ObserveUploadDuration(time.Duration) {}

// ─────────────────────────────────────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────────────────────────────────────

// IncomingFile is one part of a multipart upload.
type IncomingFile struct {
	Filename string
	Content  []byte
}

// Result describes one persisted filing.
type Result struct {
	Filename         string `json:"filename"`
	HashSHA          string `json:"hash_sha"`
	NotificationDate string `json:"fecha_notificacion"`
}

// Report is the response of a completed upload.
type Report struct {
	Message string   `json:"message"`
	Files   []Result `json:"archivos"`
}

// ClusterSummary describes one cluster of a dry run.
type ClusterSummary struct {
	Token    string   `json:"token"`
	Members  []string `json:"members"`
	Selected string   `json:"selected"`
	Pages    int      `json:"pages"`
}

// DryRunReport lists the clusters found in a directory without persisting.
type DryRunReport struct {
	Dir      string           `json:"dir"`
	Files    int              `json:"files"`
	Clusters []ClusterSummary `json:"clusters"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service is the upload use case.
type Service interface {
	// Process deduplicates files and persists one filing per cluster.
	Process(ctx context.Context, files []IncomingFile) (*Report, error)
	// Dedupe reports the clusters of the PDFs in dir without writing.
	Dedupe(ctx context.Context, dir string) (*DryRunReport, error)
}

// Options tunes the pipeline. Zero values take the document defaults, except
// HammingThreshold where 0 means exact fingerprint match and a negative value
// takes the default.
type Options struct {
	AllowedExtensions []string
	HammingThreshold  int
	Fingerprint       document.FingerprintOptions
	// TieBreaker draws among page-count ties; nil means clock-seeded.
	TieBreaker document.TieBreaker
}

// Deps are the collaborators of the service. Persister may be nil for a
// service used only for dry runs; Metrics may be nil.
type Deps struct {
	Pages     PageCounter
	Text      document.TextExtractor
	Persister *Persister
	Metrics   Metrics
	Logger    logging.Logger
}

type serviceImpl struct {
	pages     PageCounter
	dedup     *document.Deduplicator
	persister *Persister
	allowed   map[string]struct{}
	metrics   Metrics
	logger    logging.Logger
}

// NewService wires the pipeline.
func NewService(deps Deps, opts Options) Service {
	m := deps.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	exts := opts.AllowedExtensions
	if len(exts) == 0 {
		exts = []string{".pdf"}
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = struct{}{}
	}
	fps := document.NewFingerprinter(deps.Text, deps.Logger, opts.Fingerprint)
	dedup := document.NewDeduplicator(
		document.NewClusterer(fps, opts.HammingThreshold, deps.Logger),
		document.NewSelector(opts.TieBreaker),
		deps.Logger,
	)
	return &serviceImpl{
		pages:     deps.Pages,
		dedup:     dedup,
		persister: deps.Persister,
		allowed:   allowed,
		metrics:   m,
		logger:    deps.Logger,
	}
}

func (s *serviceImpl) accepts(filename string) bool {
	_, ok := s.allowed[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// load builds the documents of files, counting pages. Unreadable PDFs count
// as zero pages and still take part in clustering. Names are stored in NFC so
// a decomposed "cédula" from a macOS browser lands on the same file as a
// composed one.
func (s *serviceImpl) load(files []IncomingFile) (docs []*document.UploadedDocument, rejected int) {
	for _, f := range files {
		f.Filename = norm.NFC.String(f.Filename)
		if f.Filename == "" || !s.accepts(f.Filename) {
			s.logger.Warn("upload file rejected", logging.String("filename", f.Filename))
			rejected++
			continue
		}
		pages, err := s.pages.PageCount(f.Content)
		if err != nil {
			s.logger.Warn("page count failed",
				logging.String("filename", f.Filename), logging.Err(err))
			pages = 0
		}
		docs = append(docs, document.NewUploadedDocument(f.Filename, f.Content, pages))
	}
	return docs, rejected
}

// Process implements Service.
func (s *serviceImpl) Process(ctx context.Context, files []IncomingFile) (*Report, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveUploadDuration(time.Since(start)) }()

	s.metrics.RecordUploadFiles(OutcomeReceived, len(files))
	docs, rejected := s.load(files)
	s.metrics.RecordUploadFiles(OutcomeRejected, rejected)
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeNoValidPDF, "No se encontraron archivos PDF válidos.")
	}
	s.metrics.RecordUploadFiles(OutcomeAccepted, len(docs))
	if s.persister == nil {
		return nil, errors.New(errors.ErrCodeInternal, "upload persister not configured")
	}

	outcomes := s.dedup.Run(docs)
	s.metrics.RecordUploadClusters(len(outcomes))
	s.metrics.RecordUploadFiles(OutcomeSelected, len(outcomes))

	report := &Report{Message: CompletedMessage, Files: make([]Result, 0, len(outcomes))}
	var failed int
	// Every selected filing is attempted; results are per file.
	for _, o := range outcomes {
		res, err := s.persister.Persist(ctx, o.Token, o.Selected)
		if err != nil {
			failed++
			s.logger.Error("persist failed",
				logging.String("filename", o.Selected.Filename), logging.Err(err))
			continue
		}
		report.Files = append(report.Files, *res)
	}
	s.metrics.RecordUploadFiles(OutcomePersisted, len(report.Files))
	s.metrics.RecordUploadFiles(OutcomeFailed, failed)

	s.logger.Info("upload processed",
		logging.Int("received", len(files)),
		logging.Int("accepted", len(docs)),
		logging.Int("clusters", len(outcomes)),
		logging.Int("persisted", len(report.Files)),
		logging.Duration("elapsed", time.Since(start)))
	return report, nil
}
