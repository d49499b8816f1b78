package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

func newCaseRouter(svc *mockCaseService, sess *user.Session, metrics *counter) (*gin.Engine, *CaseHandler) {
	var rec CaseUpdateRecorder
	if metrics != nil {
		rec = metrics
	}
	h := NewCaseHandler(svc, rec, logging.NewNopLogger())
	r := gin.New()
	api := r.Group("/api", withSession(sess))
	api.POST("/obtener_por_ppus", h.GetByNumbers)
	api.POST("/actualizar_caso", h.Update)
	api.GET("/historial", h.History)
	api.GET("/registros", h.ListNumbers)
	api.GET("/get_plazos", h.Deadlines)
	api.GET("/buscar", h.Search)
	api.GET("/years", h.Years)
	api.POST("/generar_registro_consulta", h.NextConsultation)
	return r, h
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetByNumbers(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, adminSession(), nil)
	svc.On("GetByNumbers", mock.Anything, []string{"D-1-2024"}).
		Return([]casefile.CaseRecord{{Number: "D-1-2024", Attorney: "POLO"}}, nil)

	w := doJSON(r, http.MethodPost, "/api/obtener_por_ppus", `{"registro_ppu":["D-1-2024"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"registro_ppu":"D-1-2024"`)
	svc.AssertExpectations(t)
}

func TestGetByNumbers_EmptyListSkipsStore(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, adminSession(), nil)

	w := doJSON(r, http.MethodPost, "/api/obtener_por_ppus", `{"registro_ppu":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	svc.AssertNotCalled(t, "GetByNumbers", mock.Anything, mock.Anything)
}

func TestUpdate_WithCourtFile(t *testing.T) {
	svc := new(mockCaseService)
	metrics := &counter{}
	r, _ := newCaseRouter(svc, adminSession(), metrics)

	want := &caseno.CourtFile{Part1: "01234", Part2: "2023", Part3: "5", Part4: "1801", Part5: "JR", Part6: "PE", Part7: "2"}
	svc.On("Update", mock.Anything, mock.MatchedBy(func(s *user.Session) bool { return s.Username == "agarcia" }),
		"D-5-2024", map[string]any{"etiqueta": "URGENTE"}, want).Return(nil)

	w := doJSON(r, http.MethodPost, "/api/actualizar_caso", `{
		"registro_ppu": "D-5-2024",
		"data": {
			"etiqueta": "URGENTE",
			"expediente_juzgado": {"campo1":"01234","campo2":"2023","campo3":5,"campo4":"1801","campo5":"JR","campo6":"PE","campo7":2}
		}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Caso actualizado exitosamente"}`, w.Body.String())
	assert.Equal(t, 1, metrics.ok)
	svc.AssertExpectations(t)
}

func TestUpdate_CourtFileMustBeObject(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, adminSession(), nil)

	w := doJSON(r, http.MethodPost, "/api/actualizar_caso",
		`{"registro_ppu":"D-5-2024","data":{"expediente_juzgado":"01234-2023"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"El campo 'expediente_juzgado' debe ser un objeto."}`, w.Body.String())
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_EmptyCourtFileIsIgnored(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, adminSession(), nil)
	svc.On("Update", mock.Anything, mock.Anything, "D-5-2024", map[string]any{"etiqueta": "X"}, (*caseno.CourtFile)(nil)).Return(nil)

	w := doJSON(r, http.MethodPost, "/api/actualizar_caso",
		`{"registro_ppu":"D-5-2024","data":{"etiqueta":"X","expediente_juzgado":{}}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"forbidden", errors.New(errors.ErrCodeForbidden, "No autorizado"), http.StatusForbidden, `{"error":"No autorizado"}`},
		{"invalid court file", &casefile.CourtFileError{Fields: map[string]string{"campo5": "Debe tener 2 letras mayúsculas."}},
			http.StatusBadRequest, `{"error":{"campo5":"Debe tener 2 letras mayúsculas."}}`},
		{"unknown case", errors.New(errors.ErrCodeCaseNotFound, "Caso no encontrado"), http.StatusNotFound, `{"error":"Caso no encontrado"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockCaseService)
			metrics := &counter{}
			r, _ := newCaseRouter(svc, userSession(), metrics)
			svc.On("Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.err)

			w := doJSON(r, http.MethodPost, "/api/actualizar_caso", `{"registro_ppu":"D-5-2024","data":{"origen":"x"}}`)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.Equal(t, 1, metrics.failed)
		})
	}
}

func TestHistory(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, userSession(), nil)
	svc.On("History", mock.Anything, "D-5-2024").Return(&casefile.History{
		Current:  &casefile.Version{VersionID: casefile.CurrentVersionID, Number: "D-5-2024"},
		Versions: []casefile.Version{},
	}, nil)
	svc.On("History", mock.Anything, "").Return(nil, errors.InvalidParam("Registro PPU es requerido"))

	w := doJSON(r, http.MethodGet, "/api/historial?registro_ppu=D-5-2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version_actual"`)
	assert.Contains(t, w.Body.String(), `"historial":[]`)

	w = doJSON(r, http.MethodGet, "/api/historial", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Registro PPU es requerido"}`, w.Body.String())
}

func TestListNumbers(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, userSession(), nil)
	svc.On("ListNumbers", mock.Anything, caseno.ListingDenuncia, "2024").Return([]string{"D-1-2024", "D-2-2024"}, nil)
	svc.On("ListNumbers", mock.Anything, caseno.ListingKind("OTRO"), "").
		Return(nil, errors.Wrap(errors.InvalidParam("bad kind"), errors.ErrCodeListingKindInvalid, "Tipo inválido"))

	w := doJSON(r, http.MethodGet, "/api/registros?tipo=denuncia&year=2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["D-1-2024","D-2-2024"]}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/registros?tipo=otro", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Tipo inválido"}`, w.Body.String())
}

func TestDeadlines_UsesHandlerClock(t *testing.T) {
	svc := new(mockCaseService)
	r, h := newCaseRouter(svc, userSession(), nil)
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	svc.On("Deadlines", mock.Anything, now).Return([]casefile.DeadlineRow{{ID: 7, Number: "D-5-2024", Remaining: "2"}}, nil)

	w := doJSON(r, http.MethodGet, "/api/get_plazos", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dias_restantes":"2"`)
}

func TestSearch_ParsesQuery(t *testing.T) {
	svc := new(mockCaseService)
	sess := userSession()
	r, _ := newCaseRouter(svc, sess, nil)
	svc.On("Search", mock.Anything, sess, casefile.SearchRequest{
		Query: "12-2024", Year: "", Kind: "ALL", Attorney: "POLO",
		IncludeArchived: false, Page: 2, Limit: 50,
	}).Return(&casefile.SearchPage{Data: []casefile.CaseRecord{}, Page: 2, TotalPages: 3, TotalRecords: 120}, nil)

	w := doJSON(r, http.MethodGet, "/api/buscar?query=12-2024&page=2&limit=50&mostrar_archivados=false&abogado=POLO", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"page":2,"total_pages":3,"total_records":120,"used_year":""}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSearch_Defaults(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, adminSession(), nil)
	svc.On("Search", mock.Anything, mock.Anything, casefile.SearchRequest{Kind: "ALL", IncludeArchived: true, Page: 1}).
		Return(&casefile.SearchPage{Data: []casefile.CaseRecord{}, Page: 1, UsedYear: "2024"}, nil)

	w := doJSON(r, http.MethodGet, "/api/buscar", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"used_year":"2024"`)
}

func TestYears(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, userSession(), nil)
	svc.On("Years", mock.Anything).Return([]string{"2024", "2023"}, nil).Once()
	svc.On("Years", mock.Anything).Return(nil, errors.Wrap(assert.AnError, errors.ErrCodeDatabaseError, "load years"))

	w := doJSON(r, http.MethodGet, "/api/years", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"years":["2024","2023"]}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/years", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error al conectar con la base de datos"}`, w.Body.String())
}

func TestNextConsultation(t *testing.T) {
	svc := new(mockCaseService)
	r, _ := newCaseRouter(svc, adminSession(), nil)
	svc.On("NextConsultation", mock.Anything, casefile.ConsultationRequest{Year: "2024"}).Return("CONS-013-2024", nil)
	svc.On("NextConsultation", mock.Anything, casefile.ConsultationRequest{Year: "2024", Special: true, Number: "45", Suffix: "B"}).
		Return("CONS-45-2024-B", nil)
	svc.On("NextConsultation", mock.Anything, casefile.ConsultationRequest{}).
		Return("", errors.InvalidParam("Año es requerido"))

	w := doJSON(r, http.MethodPost, "/api/generar_registro_consulta", `{"year":2024}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"registro_ppu":"CONS-013-2024","success":true}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/generar_registro_consulta", `{"year":"2024","caso_especial":true,"numero":45,"sufijo":"B"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"registro_ppu":"CONS-45-2024-B","success":true}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/generar_registro_consulta", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Año es requerido"}`, w.Body.String())
}
