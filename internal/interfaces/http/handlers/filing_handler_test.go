package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/legajos-penal/internal/application/upload"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

func newFilingRouter(up *mockUploadService, lib *mockLibrary) *gin.Engine {
	h := NewFilingHandler(up, lib, logging.NewNopLogger())
	r := gin.New()
	r.POST("/upload", h.Upload)
	r.POST("/api/eliminar_pdfs_por_registro", h.DeleteByNumber)
	r.POST("/api/limpiar_pdfs_por_registros", h.CleanByNumbers)
	r.GET("/api/descargar_pdf", h.Download)
	return r
}

func multipartRequest(t *testing.T, field string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		w, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_PassesEveryPart(t *testing.T) {
	up, lib := new(mockUploadService), new(mockLibrary)
	r := newFilingRouter(up, lib)

	up.On("Process", mock.Anything, mock.MatchedBy(func(files []upload.IncomingFile) bool {
		if len(files) != 2 {
			return false
		}
		got := map[string]string{}
		for _, f := range files {
			got[f.Filename] = string(f.Content)
		}
		return got["D-5-2024 a.pdf"] == "%PDF-a" && got["D-5-2024 b.pdf"] == "%PDF-b"
	})).Return(&upload.Report{
		Message: "Archivos procesados",
		Files:   []upload.Result{{Filename: "D-5-2024 a.pdf", HashSHA: "abc"}},
	}, nil)

	req := multipartRequest(t, "file", map[string][]byte{
		"D-5-2024 a.pdf": []byte("%PDF-a"),
		"D-5-2024 b.pdf": []byte("%PDF-b"),
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hash_sha":"abc"`)
	up.AssertExpectations(t)
}

func TestUpload_NoFiles(t *testing.T) {
	up, lib := new(mockUploadService), new(mockLibrary)
	r := newFilingRouter(up, lib)

	for _, req := range []*http.Request{
		multipartRequest(t, "other", map[string][]byte{"x.pdf": []byte("x")}),
		httptest.NewRequest(http.MethodPost, "/upload", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"No se recibieron archivos"}`, w.Body.String())
	}
	up.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestUpload_NoValidPDF(t *testing.T) {
	up, lib := new(mockUploadService), new(mockLibrary)
	r := newFilingRouter(up, lib)
	up.On("Process", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeNoValidPDF, "No se encontraron archivos PDF válidos"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "file", map[string][]byte{"notas.txt": []byte("hola")}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No se encontraron archivos PDF válidos"}`, w.Body.String())
}

func TestDeleteByNumber(t *testing.T) {
	up, lib := new(mockUploadService), new(mockLibrary)
	r := newFilingRouter(up, lib)
	lib.On("DeleteMatching", mock.Anything, "D-5-2024").Return([]string{"D-5-2024 x.pdf"}, nil)
	lib.On("DeleteMatching", mock.Anything, "").Return(nil, errors.InvalidParam("registro_ppu es requerido"))

	w := doJSON(r, http.MethodPost, "/api/eliminar_pdfs_por_registro", `{"registro_ppu":"D-5-2024"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Archivos eliminados","deleted":["D-5-2024 x.pdf"]}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/eliminar_pdfs_por_registro", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCleanByNumbers(t *testing.T) {
	up, lib := new(mockUploadService), new(mockLibrary)
	r := newFilingRouter(up, lib)
	lib.On("DeleteMatchingAny", mock.Anything, []string{"D-5-2024", "LEG-1-2023"}).Return([]string{}, nil)

	w := doJSON(r, http.MethodPost, "/api/limpiar_pdfs_por_registros", `{"ppus":["D-5-2024","LEG-1-2023"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Archivos eliminados","deleted":[]}`, w.Body.String())
}

func TestDownload(t *testing.T) {
	up, lib := new(mockUploadService), new(mockLibrary)
	r := newFilingRouter(up, lib)

	dir := t.TempDir()
	p := filepath.Join(dir, "D-5-2024 escrito.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 body"), 0o644))
	lib.On("Resolve", p).Return(p, nil)
	lib.On("Resolve", "/etc/passwd").Return("", errors.New(errors.ErrCodePathEscape, "Ruta inválida"))
	lib.On("Resolve", "/tmp/missing.pdf").Return("", errors.New(errors.ErrCodePDFNotFound, "Archivo no encontrado"))

	req := httptest.NewRequest(http.MethodGet, "/api/descargar_pdf", nil)
	q := req.URL.Query()
	q.Set("ruta", p)
	req.URL.RawQuery = q.Encode()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 body", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	w = doJSON(r, http.MethodGet, "/api/descargar_pdf?ruta=/etc/passwd", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Ruta inválida"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/descargar_pdf?ruta=/tmp/missing.pdf", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
