package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/middleware"
)

// CaseUpdateRecorder counts case edits by outcome.
type CaseUpdateRecorder interface {
	RecordCaseUpdate(success bool)
}

// CaseHandler serves the case record endpoints.
type CaseHandler struct {
	svc     casefile.Service
	metrics CaseUpdateRecorder
	now     func() time.Time
	logger  logging.Logger
}

// NewCaseHandler creates a CaseHandler. metrics may be nil.
func NewCaseHandler(svc casefile.Service, metrics CaseUpdateRecorder, logger logging.Logger) *CaseHandler {
	return &CaseHandler{svc: svc, metrics: metrics, now: time.Now, logger: logger}
}

type numbersRequest struct {
	Numbers []string `json:"registro_ppu"`
}

// GetByNumbers handles POST /api/obtener_por_ppus.
func (h *CaseHandler) GetByNumbers(c *gin.Context) {
	var req numbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Se requiere una lista de registros PPU")
		return
	}
	if len(req.Numbers) == 0 {
		RespondOK(c, DataResponse{Data: []casefile.CaseRecord{}})
		return
	}
	records, err := h.svc.GetByNumbers(c.Request.Context(), req.Numbers)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, DataResponse{Data: records})
}

type updateRequest struct {
	Number string         `json:"registro_ppu"`
	Data   map[string]any `json:"data"`
}

// courtFileKey carries the structured court file number inside data.
const courtFileKey = "expediente_juzgado"

// Update handles POST /api/actualizar_caso.
func (h *CaseHandler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Registro PPU y datos a actualizar son requeridos")
		return
	}

	var courtFile *caseno.CourtFile
	if raw, ok := req.Data[courtFileKey]; ok {
		delete(req.Data, courtFileKey)
		cf, err := parseCourtFile(raw)
		if err != nil {
			badRequest(c, "El campo 'expediente_juzgado' debe ser un objeto.")
			return
		}
		courtFile = cf
	}

	err := h.svc.Update(c.Request.Context(), middleware.CurrentSession(c), req.Number, req.Data, courtFile)
	h.recordUpdate(err == nil)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "Caso actualizado exitosamente"})
}

// parseCourtFile reads the court file object. Empty values (null, "", {})
// mean no court file was submitted.
func parseCourtFile(raw any) (*caseno.CourtFile, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
	case bool:
		if !v {
			return nil, nil
		}
	case map[string]any:
		if len(v) == 0 {
			return nil, nil
		}
		part := func(k string) string {
			if x, ok := v[k]; ok && x != nil {
				return strings.TrimSpace(fmt.Sprint(x))
			}
			return ""
		}
		return &caseno.CourtFile{
			Part1: part("campo1"), Part2: part("campo2"), Part3: part("campo3"), Part4: part("campo4"),
			Part5: part("campo5"), Part6: part("campo6"), Part7: part("campo7"),
		}, nil
	}
	return nil, fmt.Errorf("court file must be an object, got %T", raw)
}

// History handles GET /api/historial?registro_ppu=.
func (h *CaseHandler) History(c *gin.Context) {
	hist, err := h.svc.History(c.Request.Context(), c.Query("registro_ppu"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, hist)
}

// ListNumbers handles GET /api/registros?tipo=&year=.
func (h *CaseHandler) ListNumbers(c *gin.Context) {
	kind := caseno.ListingKind(strings.ToUpper(strings.TrimSpace(c.Query("tipo"))))
	numbers, err := h.svc.ListNumbers(c.Request.Context(), kind, c.Query("year"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, DataResponse{Data: numbers})
}

// Deadlines handles GET /api/get_plazos.
func (h *CaseHandler) Deadlines(c *gin.Context) {
	rows, err := h.svc.Deadlines(c.Request.Context(), h.now())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, DataResponse{Data: rows})
}

// Search handles GET /api/buscar.
func (h *CaseHandler) Search(c *gin.Context) {
	kind := strings.TrimSpace(c.Query("tipo"))
	if kind == "" {
		kind = "ALL"
	}
	page, err := h.svc.Search(c.Request.Context(), middleware.CurrentSession(c), casefile.SearchRequest{
		Query:           c.Query("query"),
		Year:            c.Query("year"),
		Kind:            kind,
		Attorney:        c.Query("abogado"),
		IncludeArchived: queryBool(c, "mostrar_archivados", true),
		Page:            queryInt(c, "page", 1),
		Limit:           queryInt(c, "limit", 0),
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, page)
}

type yearsResponse struct {
	Years []string `json:"years"`
}

// Years handles GET /api/years.
func (h *CaseHandler) Years(c *gin.Context) {
	years, err := h.svc.Years(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, yearsResponse{Years: years})
}

// consultationRequest takes year and numero as JSON strings or numbers.
type consultationRequest struct {
	Year    any    `json:"year"`
	Special bool   `json:"caso_especial"`
	Number  any    `json:"numero"`
	Suffix  string `json:"sufijo"`
}

type consultationResponse struct {
	Number  string `json:"registro_ppu"`
	Success bool   `json:"success"`
}

// NextConsultation handles POST /api/generar_registro_consulta.
func (h *CaseHandler) NextConsultation(c *gin.Context) {
	var req consultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Año es requerido")
		return
	}
	number, err := h.svc.NextConsultation(c.Request.Context(), casefile.ConsultationRequest{
		Year:    scalarString(req.Year),
		Special: req.Special,
		Number:  scalarString(req.Number),
		Suffix:  req.Suffix,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, consultationResponse{Number: number, Success: true})
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func (h *CaseHandler) recordUpdate(ok bool) {
	if h.metrics != nil {
		h.metrics.RecordCaseUpdate(ok)
	}
}
