// internal/api/handlers/facturas_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/AlonsoRmz/facturador/internal/api/responses"
	"github.com/AlonsoRmz/facturador/internal/core/loader"
	"github.com/AlonsoRmz/facturador/internal/core/reconcile"
	"github.com/AlonsoRmz/facturador/internal/core/session"
	"github.com/AlonsoRmz/facturador/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FacturasHandler atiende la carga del archivo y las búsquedas directas
// sobre el dataset.
type FacturasHandler struct {
	loader loader.Service
	sesion *session.Manager
}

// NewFacturasHandler crea un nuevo handler de facturas.
func NewFacturasHandler(loader loader.Service, sesion *session.Manager) *FacturasHandler {
	return &FacturasHandler{loader: loader, sesion: sesion}
}

// HandleCargar recibe el archivo de facturas (campo multipart "archivo"),
// lo normaliza y reemplaza por completo la sesión anterior. Si la carga
// falla, la sesión previa se conserva intacta para poder reintentar.
func (h *FacturasHandler) HandleCargar(c *gin.Context) {
	archivoHeader, err := c.FormFile("archivo")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Archivo de facturas no encontrado o inválido")
		return
	}

	archivo, err := archivoHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "No se pudo abrir el archivo de facturas")
		return
	}
	defer archivo.Close()

	dataset, err := h.loader.Cargar(archivo, archivoHeader.Filename)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Error cargando archivo", err.Error())
		return
	}

	estado := h.sesion.Reemplazar(dataset, archivoHeader.Filename)
	responses.Logger.Info("archivo cargado",
		zap.String("archivo", archivoHeader.Filename),
		zap.Int("facturas", len(dataset.Facturas)),
	)

	c.JSON(http.StatusOK, gin.H{
		"archivo":  estado.NombreArchivo,
		"facturas": len(dataset.Facturas),
		"esquema":  dataset.Esquema,
	})
}

// HandleComplementosDe regresa todos los complementos que referencian al
// UUID buscado. Cero resultados responde 200 con lista vacía: "sin
// complemento" es un desenlace normal, no un error.
func (h *FacturasHandler) HandleComplementosDe(c *gin.Context) {
	estado, err := h.sesion.Actual()
	if err != nil {
		manejarSinDatos(c, err)
		return
	}

	buscado := c.Param("uuid")
	complementos := reconcile.ReceiptsFor(estado.Dataset, buscado)
	if complementos == nil {
		complementos = []domain.Factura{}
	}

	c.JSON(http.StatusOK, gin.H{
		"uuid":         buscado,
		"complementos": complementos,
	})
}

func manejarSinDatos(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrSinDatos) {
		responses.Error(c, http.StatusConflict, "No hay datos cargados: sube primero un archivo de facturas")
		return
	}
	responses.Error(c, http.StatusInternalServerError, "Error interno", err.Error())
}
