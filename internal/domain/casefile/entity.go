// Package casefile models the case records ("datapenal"), their audit trail
// and the deadlines tracked against them.
package casefile

import (
	"strings"
	"time"
)

// CaseRecord is one row of the cases table. JSON keys are the column names
// the front end reads.
type CaseRecord struct {
	Number           string     `json:"registro_ppu"`
	Attorney         string     `json:"abogado"`
	Accused          string     `json:"denunciado"`
	Origin           string     `json:"origen"`
	FullFileNumber   string     `json:"nr de exp completo"`
	ProsecutorOffice string     `json:"fiscalia"`
	Department       string     `json:"departamento"`
	Court            string     `json:"juzgado"`
	Offense          string     `json:"delito"`
	LegalReport      string     `json:"informe_juridico"`
	Item             string     `json:"item"`
	Status           string     `json:"e_situacional"`
	IntakeDate       string     `json:"fecha_ingreso"`
	Label            string     `json:"etiqueta"`
	ArchivedOn       string     `json:"fecha_de_archivo"`
	ArchiveReason    string     `json:"razon_archivo"`
	LastModified     *time.Time `json:"last_modified"`
}

// LabelArchived marks a closed case in the etiqueta column.
const LabelArchived = "ARCHIVO"

// CleanAttorney keeps the last entry of a "previous; current" attorney list.
func CleanAttorney(raw string) string {
	if i := strings.LastIndex(raw, ";"); i >= 0 {
		return strings.TrimSpace(raw[i+1:])
	}
	return raw
}

// CurrentVersionID identifies the live row in a history listing.
const CurrentVersionID = "ACTUAL"

// Version is a snapshot of a case in the audit trail.
type Version struct {
	VersionID        string    `json:"version_id"`
	Number           string    `json:"registro_ppu"`
	Attorney         string    `json:"abogado"`
	Accused          string    `json:"denunciado"`
	Origin           string    `json:"origen"`
	Court            string    `json:"juzgado"`
	ProsecutorOffice string    `json:"fiscalia"`
	Department       string    `json:"departamento"`
	Status           string    `json:"e_situacional"`
	VersionDate      string    `json:"fecha_version"`
	ModifiedBy       string    `json:"usuario_modificacion,omitempty"`
	Path             string    `json:"ruta,omitempty"`
	RecordedAt       time.Time `json:"-"`
}

// HasDocument reports whether the version points at a stored filing.
func (v Version) HasDocument() bool {
	p := strings.TrimSpace(v.Path)
	return p != "" && !strings.EqualFold(p, "NULL")
}

// History is the audit trail of one case.
type History struct {
	Current  *Version  `json:"version_actual"`
	Versions []Version `json:"historial"`
}

// DeadlineRow is a tracked deadline joined with its case.
type DeadlineRow struct {
	ID               int64      `json:"id"`
	Number           string     `json:"registro_ppu"`
	Status           string     `json:"e_situacional"`
	Attorney         string     `json:"abogado"`
	Action           string     `json:"accion"`
	Term             string     `json:"plazo_atencion"`
	FollowUp         string     `json:"seguimiento"`
	Path             string     `json:"ruta"`
	AttendedAt       *time.Time `json:"-"`
	AttendedAtText   string     `json:"fecha_atencion"`
	Accused          string     `json:"denunciado"`
	Origin           string     `json:"origen"`
	ProsecutorOffice string     `json:"fiscalia"`
	Court            string     `json:"juzgado"`
	Department       string     `json:"departamento"`
	Hearing          bool       `json:"audiencia"`
	DueDate          *string    `json:"fecha_limite"`
	Remaining        string     `json:"dias_restantes"`
}

// UpdateCommand is a filtered set of column changes to one case.
type UpdateCommand struct {
	Number     string
	Changes    map[string]any
	Actor      string
	ModifiedAt time.Time
}

// SearchCriteria narrows a case search in the store. Empty fields do not
// filter.
type SearchCriteria struct {
	// Text matches any searchable column, case-insensitively.
	Text string
	// NumberPatterns are LIKE patterns OR-ed with Text on registro_ppu.
	NumberPatterns []string
	// NumberRegex is a POSIX regex registro_ppu must match.
	NumberRegex string
	// Attorney matches the current attorney, upper-cased.
	Attorney        string
	ExcludeArchived bool
}

// SearchRequest is a case search typed in the front end.
// ConsultationRequest asks for a consultation record number. Special
// requests carry the number (and optional suffix) to use instead of the next
// free one.
type ConsultationRequest struct {
	Year    string
	Special bool
	Number  string
	Suffix  string
}

type SearchRequest struct {
	Query           string
	Year            string
	Kind            string // DENUNCIA | LEGAJO | ALL
	Attorney        string
	IncludeArchived bool
	Page            int
	Limit           int
}

// SearchPage is one page of search results.
type SearchPage struct {
	Data         []CaseRecord `json:"data"`
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalRecords int          `json:"total_records"`
	UsedYear     string       `json:"used_year"`
}
