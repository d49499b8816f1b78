package document

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
)

// DefaultHammingThreshold is the largest fingerprint distance still judged a
// duplicate.
const DefaultHammingThreshold = 3

// ─────────────────────────────────────────────────────────────────────────────
// Grouping
// ─────────────────────────────────────────────────────────────────────────────

// CaseGroup holds the documents sharing one case token, in upload order.
type CaseGroup struct {
	Token     string
	Documents []*UploadedDocument
}

// GroupByCaseToken partitions docs by Token. Groups are returned in order of
// first appearance and keep the input order of their members.
func GroupByCaseToken(docs []*UploadedDocument) []CaseGroup {
	index := make(map[string]int)
	var groups []CaseGroup
	for _, d := range docs {
		i, ok := index[d.Token]
		if !ok {
			i = len(groups)
			index[d.Token] = i
			groups = append(groups, CaseGroup{Token: d.Token})
		}
		groups[i].Documents = append(groups[i].Documents, d)
	}
	return groups
}

// ─────────────────────────────────────────────────────────────────────────────
// Clustering
// ─────────────────────────────────────────────────────────────────────────────

// Cluster is a set of documents judged to be the same filing. The first
// member is the anchor later documents are compared against.
type Cluster struct {
	Documents []*UploadedDocument
}

// Anchor returns the first member.
func (c Cluster) Anchor() *UploadedDocument {
	if len(c.Documents) == 0 {
		return nil
	}
	return c.Documents[0]
}

// Fingerprints supplies the fingerprints a Clusterer compares.
// *Fingerprinter is the production implementation.
type Fingerprints interface {
	Full(doc *UploadedDocument) Fingerprint
	Trimmed(doc *UploadedDocument) Fingerprint
	NeedsTrim(doc *UploadedDocument) bool
}

// Clusterer runs anchor-based single linkage inside one case group.
type Clusterer struct {
	fps       Fingerprints
	threshold int
	logger    logging.Logger
}

// NewClusterer creates a Clusterer. A negative threshold takes the default.
func NewClusterer(fps Fingerprints, threshold int, log logging.Logger) *Clusterer {
	if threshold < 0 {
		threshold = DefaultHammingThreshold
	}
	return &Clusterer{fps: fps, threshold: threshold, logger: log}
}

// Cluster partitions g. Each document joins the first cluster, in creation
// order, whose anchor is within the threshold, or starts a new cluster.
// Members are never compared with each other, only with anchors. A
// single-document group is returned without fingerprinting.
func (c *Clusterer) Cluster(g CaseGroup) []Cluster {
	switch len(g.Documents) {
	case 0:
		return nil
	case 1:
		return []Cluster{{Documents: []*UploadedDocument{g.Documents[0]}}}
	}

	var clusters []Cluster
	for _, doc := range g.Documents {
		placed := false
		for i := range clusters {
			anchor := clusters[i].Anchor()
			if d := c.distance(doc, anchor); d <= c.threshold {
				c.logger.Info("duplicate grouped",
					logging.String("filename", doc.Filename),
					logging.String("anchor", anchor.Filename),
					logging.String("token", g.Token),
					logging.Int("distance", d))
				clusters[i].Documents = append(clusters[i].Documents, doc)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, Cluster{Documents: []*UploadedDocument{doc}})
		}
	}
	return clusters
}

// distance compares trimmed fingerprints when either side is long, and the
// memoised full fingerprints otherwise.
func (c *Clusterer) distance(a, b *UploadedDocument) int {
	if c.fps.NeedsTrim(a) || c.fps.NeedsTrim(b) {
		d := c.fps.Trimmed(a).Distance(c.fps.Trimmed(b))
		c.logger.Debug("trimmed distance",
			logging.String("a", a.Filename), logging.String("b", b.Filename), logging.Int("distance", d))
		return d
	}
	d := c.fps.Full(a).Distance(c.fps.Full(b))
	c.logger.Debug("full distance",
		logging.String("a", a.Filename), logging.String("b", b.Filename), logging.Int("distance", d))
	return d
}

// ─────────────────────────────────────────────────────────────────────────────
// Selection
// ─────────────────────────────────────────────────────────────────────────────

// TieBreaker picks an index in [0, n). *rand.Rand satisfies it.
type TieBreaker interface {
	IntN(n int) int
}

// NewTieBreaker returns a PCG-seeded source and the seed it used. A zero seed
// is replaced by one derived from the clock so runs differ; log the returned
// seed to reproduce a run.
func NewTieBreaker(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// Selector keeps one document per cluster: the one with most pages, with
// ties broken uniformly at random. Draws are serialised so one Selector can
// serve concurrent uploads.
type Selector struct {
	mu sync.Mutex
	tb TieBreaker
}

// NewSelector creates a Selector drawing ties from tb.
func NewSelector(tb TieBreaker) *Selector {
	if tb == nil {
		tb, _ = NewTieBreaker(0)
	}
	return &Selector{tb: tb}
}

// Candidates returns the members with the maximum page count.
func Candidates(c Cluster) []*UploadedDocument {
	best := -1
	var out []*UploadedDocument
	for _, d := range c.Documents {
		switch {
		case d.Pages > best:
			best = d.Pages
			out = append(out[:0], d)
		case d.Pages == best:
			out = append(out, d)
		}
	}
	return out
}

// Select returns the representative of c, or nil for an empty cluster.
func (s *Selector) Select(c Cluster) *UploadedDocument {
	cands := Candidates(c)
	switch len(cands) {
	case 0:
		return nil
	case 1:
		return cands[0]
	default:
		s.mu.Lock()
		i := s.tb.IntN(len(cands))
		s.mu.Unlock()
		return cands[i]
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────────

// Outcome is one cluster and its kept document.
type Outcome struct {
	Token    string
	Cluster  Cluster
	Selected *UploadedDocument
}

// Deduplicator chains grouping, clustering and selection.
type Deduplicator struct {
	clusterer *Clusterer
	selector  *Selector
	logger    logging.Logger
}

// NewDeduplicator wires a Deduplicator.
func NewDeduplicator(clusterer *Clusterer, selector *Selector, log logging.Logger) *Deduplicator {
	return &Deduplicator{clusterer: clusterer, selector: selector, logger: log}
}

// Run returns one outcome per cluster, groups in first-appearance order.
func (d *Deduplicator) Run(docs []*UploadedDocument) []Outcome {
	var out []Outcome
	for _, g := range GroupByCaseToken(docs) {
		for _, c := range d.clusterer.Cluster(g) {
			sel := d.selector.Select(c)
			d.logger.Info("cluster resolved",
				logging.String("token", g.Token),
				logging.Int("members", len(c.Documents)),
				logging.String("selected", sel.Filename),
				logging.Int("pages", sel.Pages))
			out = append(out, Outcome{Token: g.Token, Cluster: c, Selected: sel})
		}
	}
	d.logger.Info("deduplication finished",
		logging.Int("documents", len(docs)),
		logging.Int("clusters", len(out)))
	return out
}
