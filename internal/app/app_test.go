package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/legajos-penal/internal/config"
	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/internal/infrastructure/pdf"
	"github.com/turtacn/legajos-penal/internal/testutil"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

func TestNewDirectory(t *testing.T) {
	dir, err := NewDirectory([]config.UserConfig{
		{Username: " agarcia ", PasswordHash: "$2a$x", Role: "ADMIN", DenyFields: []string{"etiqueta"}},
		{Username: "jpolo", Role: "", Attorney: " POLO "},
	})
	require.NoError(t, err)

	a, ok := dir.Lookup("agarcia")
	require.True(t, ok)
	assert.Equal(t, user.RoleAdmin, a.Role)
	assert.Equal(t, []string{"etiqueta"}, a.DenyFields)

	j, ok := dir.Lookup("jpolo")
	require.True(t, ok)
	assert.Equal(t, user.RoleUser, j.Role)
	assert.Equal(t, "POLO", dir.AttorneyFor("jpolo"))
}

func TestNewDirectory_RejectsUnknownRole(t *testing.T) {
	_, err := NewDirectory([]config.UserConfig{{Username: "x", Role: "root"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestNewUploadService_DryRun(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content []byte) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
	}
	write("D-5-2024 escrito.pdf", testutil.BuildPDF([]string{"Se corre traslado a la defensa del imputado"}, nil))
	write("LEG-3-2023 acta.pdf", testutil.BuildPDF([]string{"Acta de audiencia de prision preventiva", "Firma"}, nil))
	write("notas.txt", []byte("ignored"))

	log := testutil.NewMockLogger()
	svc, seed := NewUploadService(config.UploadConfig{TieBreakSeed: 42}, pdf.NewReader(logging.NewNopLogger()), nil, nil, log)
	assert.Equal(t, uint64(42), seed)
	assert.False(t, log.HasMessage("info", "tie-break seed generated"))

	report, err := svc.Dedupe(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Len(t, report.Clusters, 2)
}

func TestNewUploadService_LogsGeneratedSeed(t *testing.T) {
	log := testutil.NewMockLogger()
	_, seed := NewUploadService(config.UploadConfig{}, pdf.NewReader(logging.NewNopLogger()), nil, nil, log)
	assert.NotZero(t, seed)
	assert.True(t, log.HasMessage("info", "tie-break seed generated"))
}

func TestClose_PartialApp(t *testing.T) {
	assert.NotPanics(t, func() { (&App{}).Close() })
}
