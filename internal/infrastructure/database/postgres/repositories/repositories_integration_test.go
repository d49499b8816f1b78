//go:build integration

// Integration tests for the PostgreSQL repositories. They require Docker and
// are gated behind the "integration" build tag.
package repositories_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/legajos-penal/internal/config"
	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/infrastructure/database/postgres"
	"github.com/turtacn/legajos-penal/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test helpers
// ─────────────────────────────────────────────────────────────────────────────

func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "legajos_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	conn, err := postgres.NewConnection(ctx, config.DatabaseConfig{
		Host: host, Port: p, User: "test", Password: "test", DBName: "legajos_test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	require.NoError(t, postgres.NewMigrator(conn.DSN(), logging.NewNopLogger()).Up())
	return conn
}

func seedCases(t *testing.T, conn *postgres.Connection) {
	t.Helper()
	ctx := context.Background()
	rows := [][]any{
		{"D-5-2024", "ROJAS; POLO", "Juan Perez", "CASO 101", ""},
		{"D-12-2024", "POLO", "Ana Diaz", "CASO 202", ""},
		{"LEG-3-2023", "NAVARRO", "Luis Soto", "", "ARCHIVO"},
		{"L. 7-2023", "NAVARRO", "Marta Ruiz", "", ""},
	}
	for _, r := range rows {
		_, err := conn.Pool().Exec(ctx,
			"INSERT INTO case_records (registro_ppu, abogado, denunciado, origen, etiqueta) VALUES ($1, $2, $3, $4, $5)",
			r...)
		require.NoError(t, err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CaseRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestCaseRepository(t *testing.T) {
	conn := startPostgres(t)
	seedCases(t, conn)
	repo := repositories.NewCaseRepository(conn, logging.NewNopLogger())
	ctx := context.Background()

	t.Run("GetByNumbers", func(t *testing.T) {
		got, err := repo.GetByNumbers(ctx, []string{"D-12-2024", "LEG-3-2023", "X-1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Update records a version", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
		err := repo.Update(ctx, casefile.UpdateCommand{
			Number:     "D-12-2024",
			Changes:    map[string]any{"etiqueta": "URGENTE", "nr de exp completo": "00099-2024"},
			Actor:      "agarcia",
			ModifiedAt: at,
		})
		require.NoError(t, err)

		got, err := repo.GetByNumbers(ctx, []string{"D-12-2024"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "URGENTE", got[0].Label)
		assert.Equal(t, "00099-2024", got[0].FullFileNumber)

		versions, err := repo.History(ctx, "D-12-2024")
		require.NoError(t, err)
		require.Len(t, versions, 1)
		assert.Equal(t, "agarcia", versions[0].ModifiedBy)
		assert.Equal(t, "01-06-2024", versions[0].VersionDate)
		assert.False(t, versions[0].HasDocument())
	})

	t.Run("Update unknown case", func(t *testing.T) {
		err := repo.Update(ctx, casefile.UpdateCommand{Number: "D-999-2024", Changes: map[string]any{"etiqueta": "x"}})
		assert.True(t, errors.IsCode(err, errors.ErrCodeCaseNotFound))
	})

	t.Run("Current", func(t *testing.T) {
		v, err := repo.Current(ctx, "D-5-2024")
		require.NoError(t, err)
		assert.Equal(t, casefile.CurrentVersionID, v.VersionID)
		_, err = repo.Current(ctx, "D-404-2024")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("ListNumbers", func(t *testing.T) {
		got, err := repo.ListNumbers(ctx, []string{"D-%-2024", "L. %-2023"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"D-5-2024", "D-12-2024", "L. 7-2023"}, got)
	})

	t.Run("Search by attorney excludes archived", func(t *testing.T) {
		got, err := repo.Search(ctx, casefile.SearchCriteria{Attorney: "polo", ExcludeArchived: true})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = repo.Search(ctx, casefile.SearchCriteria{Attorney: "NAVARRO", ExcludeArchived: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "L. 7-2023", got[0].Number)
	})

	t.Run("Search by regex and text", func(t *testing.T) {
		got, err := repo.Search(ctx, casefile.SearchCriteria{NumberRegex: `^(D-[0-9]+-2024(-[A-Z])?)$`})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = repo.Search(ctx, casefile.SearchCriteria{Text: "marta"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "L. 7-2023", got[0].Number)
	})

	t.Run("Years", func(t *testing.T) {
		got, err := repo.Years(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{2024, 2023}, got)
	})

	t.Run("ListDeadlines", func(t *testing.T) {
		_, err := conn.Pool().Exec(ctx,
			"INSERT INTO case_deadlines (registro_ppu, accion, plazo_atencion, fecha_atencion) VALUES ($1, $2, $3, $4)",
			"D-5-2024", "Absolver traslado", "3", time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		got, err := repo.ListDeadlines(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ROJAS; POLO", got[0].Attorney)
		require.NotNil(t, got[0].AttendedAt)
	})

	t.Run("ListNumbers consultation pattern", func(t *testing.T) {
		for _, n := range []string{"CONS-004-2024", "CONS-011-2024", "CONS-002-2023"} {
			_, err := conn.Pool().Exec(ctx, "INSERT INTO case_records (registro_ppu) VALUES ($1)", n)
			require.NoError(t, err)
		}
		got, err := repo.ListNumbers(ctx, []string{caseno.ConsultationPattern("2024")})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"CONS-004-2024", "CONS-011-2024"}, got)
		assert.Equal(t, "CONS-012-2024", caseno.NextConsultation(got, "2024"))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// NotificationRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestNotificationRepository(t *testing.T) {
	conn := startPostgres(t)
	repo := repositories.NewNotificationRepository(conn, logging.NewNopLogger())
	ctx := context.Background()

	// The registry is filled by the notification pipeline; only reads happen here.
	for _, date := range []string{"pendiente", "2024-03-01", "2024-04-01"} {
		_, err := conn.Pool().Exec(ctx,
			"INSERT INTO notification_registry (content_hash, notified_on) VALUES ($1, $2)", "abc", date)
		require.NoError(t, err)
	}

	got, err := repo.NotificationDate(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got)

	got, err = repo.NotificationDate(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}
