package casefile

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/domain/deadline"
	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

const (
	defaultPageSize = 20
	systemActor     = "sistema"
	originPrefix    = "CASO "
)

// AttorneyResolver maps a staff username to the attorney name on their cases.
type AttorneyResolver interface {
	AttorneyFor(username string) string
}

// Service exposes the case operations used by the HTTP handlers.
type Service interface {
	GetByNumbers(ctx context.Context, numbers []string) ([]CaseRecord, error)
	Update(ctx context.Context, actor *user.Session, number string, data map[string]any, courtFile *caseno.CourtFile) error
	History(ctx context.Context, number string) (*History, error)
	ListNumbers(ctx context.Context, kind caseno.ListingKind, year string) ([]string, error)
	Deadlines(ctx context.Context, now time.Time) ([]DeadlineRow, error)
	Search(ctx context.Context, actor *user.Session, req SearchRequest) (*SearchPage, error)
	Years(ctx context.Context) ([]string, error)
	NextConsultation(ctx context.Context, req ConsultationRequest) (string, error)
}

// CourtFileError lists the invalid parts of a submitted court file number.
type CourtFileError struct {
	Fields map[string]string
}

func (e *CourtFileError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("court file invalid: %s", strings.Join(keys, ", "))
}

// Unwrap classifies the failure as a bad request.
func (e *CourtFileError) Unwrap() error {
	return errors.New(errors.ErrCodeCourtFileInvalid, "Expediente de juzgado inválido")
}

// Option configures the service.
type Option func(*serviceImpl)

// WithClock replaces time.Now for modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

type serviceImpl struct {
	repo      Repository
	attorneys AttorneyResolver
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates the case service.
func NewService(repo Repository, attorneys AttorneyResolver, log logging.Logger, opts ...Option) Service {
	s := &serviceImpl{repo: repo, attorneys: attorneys, logger: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *serviceImpl) GetByNumbers(ctx context.Context, numbers []string) ([]CaseRecord, error) {
	cleaned := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return []CaseRecord{}, nil
	}
	records, err := s.repo.GetByNumbers(ctx, cleaned)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "get cases by number")
	}
	if records == nil {
		records = []CaseRecord{}
	}
	return records, nil
}

func (s *serviceImpl) Update(ctx context.Context, actor *user.Session, number string, data map[string]any, courtFile *caseno.CourtFile) error {
	number = strings.TrimSpace(number)
	if number == "" || (len(data) == 0 && courtFile == nil) {
		return errors.InvalidParam("Registro PPU y datos a actualizar son requeridos")
	}
	if actor == nil {
		return errors.New(errors.ErrCodeForbidden, "No autorizado")
	}
	cols, ok := user.UpdatableColumns(actor.Role)
	if !ok {
		return errors.New(errors.ErrCodeForbidden, "No autorizado")
	}
	allowed := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		allowed[c] = struct{}{}
	}

	changes := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := allowed[k]; ok {
			changes[k] = v
		}
	}

	if courtFile != nil {
		if _, ok := allowed["origen"]; !ok {
			return errors.New(errors.ErrCodeCaseFieldForbidden, "No autorizado").WithDetail("origen")
		}
		if errs := courtFile.Validate(); len(errs) > 0 {
			return &CourtFileError{Fields: errs}
		}
		origin := strings.TrimSpace(asString(changes["origen"]))
		if origin != "" {
			origin += ", " + courtFile.String()
		} else {
			origin = courtFile.String()
		}
		changes["origen"] = origin
	} else if origin, ok := changes["origen"].(string); ok && origin != "" {
		changes["origen"] = normalizeOrigin(origin)
	}

	actorName := actor.Username
	if actorName == "" {
		actorName = systemActor
	}
	cmd := UpdateCommand{Number: number, Changes: changes, Actor: actorName, ModifiedAt: s.now()}
	if err := s.repo.Update(ctx, cmd); err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "update case")
	}
	s.logger.Info("case updated",
		logging.String("registro_ppu", number),
		logging.String("user", actorName),
		logging.Int("fields", len(changes)))
	return nil
}

// normalizeOrigin prefixes bare prosecutor case numbers with "CASO ".
func normalizeOrigin(origin string) string {
	first := []rune(origin)[0]
	if unicode.IsDigit(first) && !strings.HasPrefix(origin, originPrefix) {
		return originPrefix + origin
	}
	return origin
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (s *serviceImpl) History(ctx context.Context, number string) (*History, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errors.InvalidParam("Registro PPU es requerido")
	}
	current, err := s.repo.Current(ctx, number)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load current version")
	}
	if err != nil {
		current = nil
	}
	versions, err := s.repo.History(ctx, number)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load history")
	}
	kept := make([]Version, 0, len(versions))
	for _, v := range versions {
		if v.HasDocument() {
			kept = append(kept, v)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RecordedAt.After(kept[j].RecordedAt)
	})
	return &History{Current: current, Versions: kept}, nil
}

func (s *serviceImpl) ListNumbers(ctx context.Context, kind caseno.ListingKind, year string) ([]string, error) {
	listing, err := caseno.NewListing(kind, strings.TrimSpace(year))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeListingKindInvalid, "Tipo inválido")
	}
	numbers, err := s.repo.ListNumbers(ctx, listing.SQLPrefixes())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "list case numbers")
	}
	return listing.Filter(numbers), nil
}

func (s *serviceImpl) Deadlines(ctx context.Context, now time.Time) ([]DeadlineRow, error) {
	rows, err := s.repo.ListDeadlines(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "list deadlines")
	}
	for i := range rows {
		r := &rows[i]
		if r.AttendedAt != nil {
			r.AttendedAtText = r.AttendedAt.Format("2006-01-02 15:04:05")
		}
		r.Hearing = strings.TrimSpace(r.Term) != "" && !deadline.IsNumericTerm(r.Term)
		res := deadline.Evaluate(r.AttendedAt, r.Term, now)
		r.Remaining = res.Label
		if res.DueDate != nil {
			d := res.DueDateString()
			r.DueDate = &d
		}
	}
	if rows == nil {
		rows = []DeadlineRow{}
	}
	return rows, nil
}

func (s *serviceImpl) Search(ctx context.Context, actor *user.Session, req SearchRequest) (*SearchPage, error) {
	query := strings.TrimSpace(req.Query)
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageSize
	}

	c := SearchCriteria{ExcludeArchived: !req.IncludeArchived}
	if actor != nil && actor.Role == user.RoleUser && s.attorneys != nil {
		c.Attorney = strings.ToUpper(s.attorneys.AttorneyFor(actor.Username))
	} else {
		c.Attorney = strings.ToUpper(strings.TrimSpace(CleanAttorney(req.Attorney)))
	}

	usedYear := strings.TrimSpace(req.Year)
	if query == "" && usedYear == "" {
		years, err := s.repo.Years(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "load years")
		}
		if len(years) > 0 {
			usedYear = strconv.Itoa(years[0])
		}
	}

	if query != "" {
		c.Text = query
		if q, ok := caseno.ParseQuery(query); ok {
			c.NumberPatterns = q.Variants()
		}
	} else if usedYear != "" {
		pattern, ok := caseno.SearchPattern(caseno.ListingKind(strings.ToUpper(req.Kind)), usedYear)
		if !ok {
			return nil, errors.InvalidParam("Año inválido").WithDetail(usedYear)
		}
		c.NumberRegex = pattern
	}

	records, err := s.repo.Search(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "search cases")
	}
	for i := range records {
		records[i].Attorney = CleanAttorney(records[i].Attorney)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return caseno.Compare(records[i].Number, records[j].Number) < 0
	})

	total := len(records)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	data := make([]CaseRecord, end-start)
	copy(data, records[start:end])

	return &SearchPage{
		Data:         data,
		Page:         page,
		TotalPages:   (total + limit - 1) / limit,
		TotalRecords: total,
		UsedYear:     usedYear,
	}, nil
}

func (s *serviceImpl) Years(ctx context.Context) ([]string, error) {
	years, err := s.repo.Years(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load years")
	}
	out := make([]string, 0, len(years))
	for _, y := range years {
		out = append(out, strconv.Itoa(y))
	}
	return out, nil
}

func (s *serviceImpl) NextConsultation(ctx context.Context, req ConsultationRequest) (string, error) {
	year := strings.TrimSpace(req.Year)
	if year == "" {
		return "", errors.InvalidParam("Año es requerido")
	}
	if !caseno.ValidYear(year) {
		return "", errors.InvalidParam("Año inválido").WithDetail(year)
	}
	if req.Special {
		if strings.TrimSpace(req.Number) == "" {
			return "", errors.InvalidParam("Número es requerido para casos especiales")
		}
		number := caseno.SpecialConsultation(req.Number, year, req.Suffix)
		s.logger.Info("consultation number generated", logging.String("registro_ppu", number), logging.Bool("special", true))
		return number, nil
	}
	existing, err := s.repo.ListNumbers(ctx, []string{caseno.ConsultationPattern(year)})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnknown, "list consultation numbers")
	}
	number := caseno.NextConsultation(existing, year)
	s.logger.Info("consultation number generated", logging.String("registro_ppu", number), logging.Int("existing", len(existing)))
	return number, nil
}
