package repositories

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/infrastructure/database/postgres"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// versionDateLayout is how fecha_version is rendered to the front end.
const versionDateLayout = "02-01-2006"

// recordTextColumns are the text columns of case_records in scan order.
var recordTextColumns = []string{
	"registro_ppu",
	"abogado",
	"denunciado",
	"origen",
	"nr de exp completo",
	"fiscalia",
	"departamento",
	"juzgado",
	"delito",
	"informe_juridico",
	"item",
	"e_situacional",
	"fecha_ingreso",
	"etiqueta",
	"fecha_de_archivo",
	"razon_archivo",
}

// writableColumns maps every column an update may touch to its quoted
// identifier. Keys outside this map are rejected before SQL is built.
var writableColumns = func() map[string]string {
	m := make(map[string]string)
	for _, c := range []string{
		"abogado", "denunciado", "origen", "nr de exp completo", "delito", "departamento",
		"fiscalia", "juzgado", "informe_juridico", "item", "e_situacional", "etiqueta",
		"fecha_de_archivo", "razon_archivo",
	} {
		m[c] = quoteIdent(c)
	}
	return m
}()

// searchTextColumns are matched by the free-text search box.
var searchTextColumns = []string{
	"registro_ppu", "abogado", "denunciado", "origen", "nr de exp completo", "fiscalia",
	"departamento", "juzgado", "delito", "informe_juridico", "item", "e_situacional",
}

var recordSelect = func() string {
	parts := make([]string, 0, len(recordTextColumns)+1)
	for _, c := range recordTextColumns {
		q := quoteIdent(c)
		parts = append(parts, "COALESCE("+q+", '')")
	}
	parts = append(parts, "last_modified")
	return "SELECT " + strings.Join(parts, ", ") + " FROM case_records"
}()

func scanRecord(s scanner) (casefile.CaseRecord, error) {
	var r casefile.CaseRecord
	var modified time.Time
	err := s.Scan(
		&r.Number, &r.Attorney, &r.Accused, &r.Origin, &r.FullFileNumber, &r.ProsecutorOffice,
		&r.Department, &r.Court, &r.Offense, &r.LegalReport, &r.Item, &r.Status, &r.IntakeDate,
		&r.Label, &r.ArchivedOn, &r.ArchiveReason, &modified,
	)
	if err != nil {
		return r, err
	}
	r.LastModified = &modified
	return r, nil
}

func collectRecords(rows pgx.Rows) ([]casefile.CaseRecord, error) {
	defer rows.Close()
	out := make([]casefile.CaseRecord, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan case record")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate case records")
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CaseRepository
// ─────────────────────────────────────────────────────────────────────────────

type postgresCaseRepo struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewCaseRepository returns the PostgreSQL casefile.Repository.
func NewCaseRepository(conn *postgres.Connection, log logging.Logger) casefile.Repository {
	return &postgresCaseRepo{pool: conn.Pool(), log: log}
}

func (r *postgresCaseRepo) GetByNumbers(ctx context.Context, numbers []string) ([]casefile.CaseRecord, error) {
	if len(numbers) == 0 {
		return []casefile.CaseRecord{}, nil
	}
	rows, err := r.pool.Query(ctx, recordSelect+" WHERE registro_ppu = ANY($1)", numbers)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load cases")
	}
	return collectRecords(rows)
}

func (r *postgresCaseRepo) Update(ctx context.Context, cmd casefile.UpdateCommand) error {
	set, params, err := buildUpdate(cmd)
	if err != nil {
		return err
	}
	return postgres.WithTransaction(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, set, params...)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update case")
		}
		if tag.RowsAffected() == 0 {
			return errors.New(errors.ErrCodeCaseNotFound, "Registro no encontrado").WithDetail(cmd.Number)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO case_record_versions (
				version_id, registro_ppu, abogado, denunciado, origen, juzgado, fiscalia,
				departamento, e_situacional, fecha_version, usuario_modificacion
			)
			SELECT $1, registro_ppu, abogado, denunciado, origen, juzgado, fiscalia,
				departamento, e_situacional, $2, $3
			FROM case_records WHERE registro_ppu = $4`,
			uuid.NewString(), cmd.ModifiedAt, cmd.Actor, cmd.Number)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to record case version")
		}
		r.log.Debug("case version recorded", logging.String("registro_ppu", cmd.Number))
		return nil
	})
}

// buildUpdate renders the UPDATE for cmd with columns in sorted order.
func buildUpdate(cmd casefile.UpdateCommand) (string, []any, error) {
	cols := make([]string, 0, len(cmd.Changes))
	for c := range cmd.Changes {
		if _, ok := writableColumns[c]; !ok {
			return "", nil, errors.New(errors.ErrCodeCaseFieldForbidden, "Campo no permitido").WithDetail(c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var a args
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, writableColumns[c]+" = "+a.add(textValue(cmd.Changes[c])))
	}
	modified := cmd.ModifiedAt
	if modified.IsZero() {
		modified = time.Now()
	}
	sets = append(sets, "last_modified = "+a.add(modified))
	where := a.add(cmd.Number)
	return "UPDATE case_records SET " + strings.Join(sets, ", ") + " WHERE registro_ppu = " + where, a.values, nil
}

func (r *postgresCaseRepo) Current(ctx context.Context, number string) (*casefile.Version, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT registro_ppu, COALESCE(abogado, ''), COALESCE(denunciado, ''), COALESCE(origen, ''),
			COALESCE(juzgado, ''), COALESCE(fiscalia, ''), COALESCE(departamento, ''),
			COALESCE(e_situacional, ''), last_modified
		FROM case_records WHERE registro_ppu = $1 LIMIT 1`, number)

	v := casefile.Version{VersionID: casefile.CurrentVersionID}
	err := row.Scan(&v.Number, &v.Attorney, &v.Accused, &v.Origin, &v.Court, &v.ProsecutorOffice,
		&v.Department, &v.Status, &v.RecordedAt)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeCaseNotFound, "Registro no encontrado").WithDetail(number)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load current version")
	}
	v.VersionDate = v.RecordedAt.Format(versionDateLayout)
	return &v, nil
}

func (r *postgresCaseRepo) History(ctx context.Context, number string) ([]casefile.Version, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT version_id, registro_ppu, COALESCE(abogado, ''), COALESCE(denunciado, ''),
			COALESCE(origen, ''), COALESCE(juzgado, ''), COALESCE(fiscalia, ''),
			COALESCE(departamento, ''), COALESCE(e_situacional, ''), fecha_version,
			COALESCE(usuario_modificacion, ''), COALESCE(ruta, '')
		FROM case_record_versions WHERE registro_ppu = $1
		ORDER BY fecha_version DESC, id DESC`, number)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load history")
	}
	defer rows.Close()

	out := make([]casefile.Version, 0)
	for rows.Next() {
		var v casefile.Version
		if err := rows.Scan(&v.VersionID, &v.Number, &v.Attorney, &v.Accused, &v.Origin, &v.Court,
			&v.ProsecutorOffice, &v.Department, &v.Status, &v.RecordedAt, &v.ModifiedBy, &v.Path); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan version")
		}
		v.VersionDate = v.RecordedAt.Format(versionDateLayout)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate history")
	}
	return out, nil
}

func (r *postgresCaseRepo) ListNumbers(ctx context.Context, prefixes []string) ([]string, error) {
	out := make([]string, 0)
	if len(prefixes) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		"SELECT registro_ppu FROM case_records WHERE registro_ppu LIKE ANY($1) ORDER BY registro_ppu", prefixes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list case numbers")
	}
	defer rows.Close()
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan case number")
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate case numbers")
	}
	return out, nil
}

func (r *postgresCaseRepo) ListDeadlines(ctx context.Context) ([]casefile.DeadlineRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.registro_ppu, COALESCE(d.e_situacional, ''), COALESCE(c.abogado, ''),
			COALESCE(d.accion, ''), COALESCE(d.plazo_atencion, ''), COALESCE(d.seguimiento, ''),
			COALESCE(d.ruta, ''), d.fecha_atencion, COALESCE(c.denunciado, ''), COALESCE(c.origen, ''),
			COALESCE(c.fiscalia, ''), COALESCE(c.juzgado, ''), COALESCE(c.departamento, '')
		FROM case_deadlines d
		JOIN case_records c ON c.registro_ppu = d.registro_ppu
		ORDER BY d.registro_ppu, d.id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list deadlines")
	}
	defer rows.Close()

	out := make([]casefile.DeadlineRow, 0)
	for rows.Next() {
		var d casefile.DeadlineRow
		if err := rows.Scan(&d.ID, &d.Number, &d.Status, &d.Attorney, &d.Action, &d.Term, &d.FollowUp,
			&d.Path, &d.AttendedAt, &d.Accused, &d.Origin, &d.ProsecutorOffice, &d.Court, &d.Department); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan deadline")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate deadlines")
	}
	return out, nil
}

func (r *postgresCaseRepo) Search(ctx context.Context, c casefile.SearchCriteria) ([]casefile.CaseRecord, error) {
	query, params := buildSearch(c)
	rows, err := r.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to search cases")
	}
	return collectRecords(rows)
}

// currentAttorneyExpr is the last entry of a "previous; current" attorney
// list, trimmed and upper-cased.
const currentAttorneyExpr = `UPPER(TRIM(REGEXP_REPLACE(COALESCE(abogado, ''), '^.*;', '')))`

// buildSearch renders the WHERE clause of c. Text and NumberPatterns are
// OR-ed; every other criterion is AND-ed.
func buildSearch(c casefile.SearchCriteria) (string, []any) {
	var a args
	var conds []string

	var ors []string
	if t := strings.TrimSpace(c.Text); t != "" {
		p := a.add("%" + t + "%")
		for _, col := range searchTextColumns {
			ors = append(ors, quoteIdent(col)+" ILIKE "+p)
		}
	}
	if len(c.NumberPatterns) > 0 {
		ors = append(ors, "registro_ppu LIKE ANY("+a.add(c.NumberPatterns)+")")
	}
	if len(ors) > 0 {
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if c.NumberRegex != "" {
		conds = append(conds, "registro_ppu ~ "+a.add(c.NumberRegex))
	}
	if c.Attorney != "" {
		conds = append(conds, currentAttorneyExpr+" = "+a.add(strings.ToUpper(c.Attorney)))
	}
	if c.ExcludeArchived {
		conds = append(conds, "UPPER(COALESCE(etiqueta, '')) <> "+a.add(casefile.LabelArchived))
	}

	q := recordSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q, a.values
}

func (r *postgresCaseRepo) Years(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT CAST(SUBSTRING(registro_ppu FROM '-([0-9]{4})(-[A-Z])?$') AS INTEGER) AS y
		FROM case_records
		WHERE registro_ppu ~ '-[0-9]{4}(-[A-Z])?$'
		ORDER BY y DESC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list years")
	}
	defer rows.Close()
	out := make([]int, 0)
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan year")
		}
		out = append(out, y)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate years")
	}
	return out, nil
}
