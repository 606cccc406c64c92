// internal/api/handlers/vistas_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AlonsoRmz/facturador/internal/api/responses"
	"github.com/AlonsoRmz/facturador/internal/core/report"
	"github.com/AlonsoRmz/facturador/internal/core/session"
	"github.com/AlonsoRmz/facturador/internal/domain"
	"github.com/gin-gonic/gin"
)

// VistasHandler atiende las cuatro vistas del visor y la exportación a CSV.
// Cada petición recalcula la vista completa desde el dataset más el filtro
// recibido en los parámetros de consulta; no hay nada cacheado.
type VistasHandler struct {
	report report.Service
	sesion *session.Manager
}

// NewVistasHandler crea un nuevo handler de vistas.
func NewVistasHandler(report report.Service, sesion *session.Manager) *VistasHandler {
	return &VistasHandler{report: report, sesion: sesion}
}

// filtroDeQuery arma el filtro a partir de los parámetros de consulta:
// estatus, metodos y formas como listas separadas por coma, desde/hasta como
// fechas AAAA-MM-DD. El límite superior se extiende a fin de día para que el
// rango sea inclusivo aunque las facturas traigan hora.
func filtroDeQuery(c *gin.Context) (domain.Filtro, error) {
	var filtro domain.Filtro

	filtro.Estatus = listaDeQuery(c, "estatus")
	filtro.Metodos = listaDeQuery(c, "metodos")
	filtro.Formas = listaDeQuery(c, "formas")

	if raw := c.Query("desde"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filtro, fmt.Errorf("parámetro 'desde' inválido: %q", raw)
		}
		filtro.Desde = &t
	}
	if raw := c.Query("hasta"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filtro, fmt.Errorf("parámetro 'hasta' inválido: %q", raw)
		}
		finDeDia := t.Add(24*time.Hour - time.Second)
		filtro.Hasta = &finDeDia
	}
	return filtro, nil
}

func listaDeQuery(c *gin.Context, nombre string) []string {
	raw := c.Query(nombre)
	if raw == "" {
		return nil
	}
	var valores []string
	for _, parte := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(parte); v != "" {
			valores = append(valores, v)
		}
	}
	return valores
}

func (h *VistasHandler) vistaComun(c *gin.Context) (*session.Estado, domain.Filtro, bool) {
	estado, err := h.sesion.Actual()
	if err != nil {
		manejarSinDatos(c, err)
		return nil, domain.Filtro{}, false
	}
	filtro, err := filtroDeQuery(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return nil, domain.Filtro{}, false
	}
	return estado, filtro, true
}

// HandleResumen responde la vista de resumen general.
func (h *VistasHandler) HandleResumen(c *gin.Context) {
	estado, _, ok := h.vistaComun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.report.Resumen(estado.Dataset))
}

// HandleEmitidas responde el listado de facturas emitidas filtrado.
func (h *VistasHandler) HandleEmitidas(c *gin.Context) {
	estado, filtro, ok := h.vistaComun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.report.Emitidas(estado.Dataset, filtro))
}

// HandleComplementos responde la vista de complementos de pago.
func (h *VistasHandler) HandleComplementos(c *gin.Context) {
	estado, filtro, ok := h.vistaComun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.report.Complementos(estado.Dataset, filtro))
}

// HandleGestion responde la vista de conciliación PPD/PUE.
func (h *VistasHandler) HandleGestion(c *gin.Context) {
	estado, filtro, ok := h.vistaComun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.report.Gestion(estado.Dataset, filtro, estado.Indice))
}

// HandleExportarCSV descarga la vista filtrada como CSV UTF-8.
func (h *VistasHandler) HandleExportarCSV(c *gin.Context) {
	estado, filtro, ok := h.vistaComun(c)
	if !ok {
		return
	}

	salida, err := h.report.ExportarCSV(estado.Dataset, filtro)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Error al generar el CSV", err.Error())
		return
	}

	nombre := fmt.Sprintf("facturas_filtradas_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+nombre)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", salida)
}
