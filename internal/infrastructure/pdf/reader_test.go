package pdf

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/legajos-penal/internal/testutil"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

func newTestReader() *Reader {
	return NewReader(testutil.NewMockLogger())
}

func TestReader_PageCount(t *testing.T) {
	t.Parallel()

	content := testutil.BuildPDF([]string{"uno", "dos", "tres"}, nil)
	n, err := newTestReader().PageCount(content)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestReader_PageCount_Garbage(t *testing.T) {
	t.Parallel()

	_, err := newTestReader().PageCount([]byte("not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePDFUnreadable))
}

func TestReader_ContentHash(t *testing.T) {
	t.Parallel()

	const sum = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	content := testutil.BuildPDF([]string{"cedula"}, map[string]string{HashProperty: sum})
	got, err := newTestReader().ContentHash(content)
	require.NoError(t, err)
	assert.Equal(t, sum, got)
}

func TestReader_ContentHash_Missing(t *testing.T) {
	t.Parallel()

	content := testutil.BuildPDF([]string{"cedula"}, map[string]string{"Author": "juzgado"})
	got, err := newTestReader().ContentHash(content)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReader_ExtractText_AllPages(t *testing.T) {
	t.Parallel()

	content := testutil.BuildPDF([]string{"Resolucion numero doce", "Notifiquese"}, nil)
	text, err := newTestReader().ExtractText(content, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "Resolucion")
	assert.Contains(t, text, "Notifiquese")
}

func TestReader_ExtractText_SelectedPages(t *testing.T) {
	t.Parallel()

	pages := testutil.PageTexts(8, func(i int) string { return fmt.Sprintf("pagina%d", i+1) })
	content := testutil.BuildPDF(pages, nil)

	text, err := newTestReader().ExtractText(content, []int{1, 8, 42})
	require.NoError(t, err)
	assert.Contains(t, text, "pagina1")
	assert.Contains(t, text, "pagina8")
	assert.NotContains(t, text, "pagina4")
}

func TestReader_ExtractText_ConcatenatesPages(t *testing.T) {
	t.Parallel()

	content := testutil.BuildPDF([]string{"primera", "segunda"}, nil)
	r := newTestReader()
	first, err := r.ExtractText(content, []int{1})
	require.NoError(t, err)
	second, err := r.ExtractText(content, []int{2})
	require.NoError(t, err)

	both, err := r.ExtractText(content, nil)
	require.NoError(t, err)
	assert.Equal(t, first+second, both)
}

func TestCollectText_StopsAtFailingPage(t *testing.T) {
	t.Parallel()

	pageText := func(n int) (string, error) {
		switch n {
		case 3:
			return "", stderrors.New("broken content stream")
		case 4:
			panic("unreachable page")
		}
		return fmt.Sprintf("p%d ", n), nil
	}

	text, stopped, err := collectText([]int{1, 2, 9, 3, 4}, 5, pageText)
	require.Error(t, err)
	assert.Equal(t, "p1 p2 ", text)
	assert.Equal(t, 3, stopped)

	text, stopped, err = collectText([]int{1, 4, 2}, 5, pageText)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePDFUnreadable))
	assert.Equal(t, "p1 ", text)
	assert.Equal(t, 4, stopped)

	text, _, err = collectText([]int{2, 1}, 5, pageText)
	require.NoError(t, err)
	assert.Equal(t, "p2 p1 ", text)
}

func TestReader_ExtractText_Garbage(t *testing.T) {
	t.Parallel()

	text, err := newTestReader().ExtractText([]byte("%PDF-1.4 truncated"), nil)
	assert.Error(t, err)
	assert.Empty(t, text)
}
