package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlonsoRmz/facturador/internal/api/responses"
	"github.com/AlonsoRmz/facturador/internal/core/loader"
	"github.com/AlonsoRmz/facturador/internal/core/report"
	"github.com/AlonsoRmz/facturador/internal/core/session"
	"github.com/gin-gonic/gin"
)

const csvPrueba = `UUID,Fecha,Método de Pago,Forma de Pago,Estatus,Total,Relacionados,XML
aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa,2024-01-15,PPD,99,Vigente,1500.00,,
cccccccc-cccc-cccc-cccc-cccccccccccc,2024-02-01,Complemento,03,Vigente,0.00,pago de aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa,rep_202402.xml
bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb,2024-02-10,PUE,01,Cancelado,800.00,,
`

func routerPrueba() *gin.Engine {
	gin.SetMode(gin.TestMode)
	responses.InitLogger()

	sesion := session.NewManager()
	facturas := NewFacturasHandler(loader.NewService(), sesion)
	vistas := NewVistasHandler(report.NewService(), sesion)

	router := gin.New()
	apiV1 := router.Group("/api/v1")
	apiV1.POST("/facturas/cargar", facturas.HandleCargar)
	apiV1.GET("/facturas/:uuid/complementos", facturas.HandleComplementosDe)
	apiV1.GET("/vistas/resumen", vistas.HandleResumen)
	apiV1.GET("/vistas/emitidas", vistas.HandleEmitidas)
	apiV1.GET("/vistas/gestion", vistas.HandleGestion)
	apiV1.GET("/exportar/csv", vistas.HandleExportarCSV)
	return router
}

func cargarArchivo(t *testing.T, router *gin.Engine, contenido, nombre string) *httptest.ResponseRecorder {
	t.Helper()

	var cuerpo bytes.Buffer
	form := multipart.NewWriter(&cuerpo)
	campo, err := form.CreateFormFile("archivo", nombre)
	if err != nil {
		t.Fatalf("Error armando el formulario: %v", err)
	}
	if _, err := campo.Write([]byte(contenido)); err != nil {
		t.Fatalf("Error escribiendo el archivo: %v", err)
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/facturas/cargar", &cuerpo)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCargarYConsultar(t *testing.T) {
	router := routerPrueba()

	t.Run("Consultar sin datos responde 409", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vistas/resumen", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusConflict {
			t.Errorf("Esperaba 409, obtuve %d", w.Code)
		}
	})

	t.Run("Carga válida responde conteo y esquema", func(t *testing.T) {
		w := cargarArchivo(t, router, csvPrueba, "facturas.csv")
		if w.Code != http.StatusOK {
			t.Fatalf("Esperaba 200, obtuve %d: %s", w.Code, w.Body.String())
		}
		var respuesta struct {
			Facturas int `json:"facturas"`
			Esquema  struct {
				TieneUUID bool `json:"tiene_uuid"`
			} `json:"esquema"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &respuesta); err != nil {
			t.Fatalf("Respuesta ilegible: %v", err)
		}
		if respuesta.Facturas != 3 || !respuesta.Esquema.TieneUUID {
			t.Errorf("Respuesta inesperada: %s", w.Body.String())
		}
	})

	t.Run("Resumen con métricas", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vistas/resumen", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Esperaba 200, obtuve %d", w.Code)
		}
		var resumen struct {
			TotalFacturas int `json:"total_facturas"`
			Vigentes      int `json:"vigentes"`
			FacturasPPD   int `json:"facturas_ppd"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resumen); err != nil {
			t.Fatalf("Respuesta ilegible: %v", err)
		}
		if resumen.TotalFacturas != 3 || resumen.Vigentes != 2 || resumen.FacturasPPD != 1 {
			t.Errorf("Resumen inesperado: %s", w.Body.String())
		}
	})

	t.Run("Emitidas con filtro de estatus", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vistas/emitidas?estatus=Cancelado", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var emitidas struct {
			Mostradas int `json:"mostradas"`
			DelTotal  int `json:"del_total"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &emitidas); err != nil {
			t.Fatalf("Respuesta ilegible: %v", err)
		}
		if emitidas.Mostradas != 1 || emitidas.DelTotal != 3 {
			t.Errorf("Conteos inesperados: %s", w.Body.String())
		}
	})

	t.Run("Rango de fechas inválido responde 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vistas/emitidas?desde=ayer", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Esperaba 400, obtuve %d", w.Code)
		}
	})

	t.Run("Gestión detecta la conciliación del archivo", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vistas/gestion", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var gestion struct {
			PPDSinComplemento []struct {
				UUID string `json:"uuid"`
			} `json:"ppd_sin_complemento"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &gestion); err != nil {
			t.Fatalf("Respuesta ilegible: %v", err)
		}
		// La única PPD (A) tiene complemento: nada pendiente.
		if len(gestion.PPDSinComplemento) != 0 {
			t.Errorf("Esperaba cero PPD sin complemento: %s", w.Body.String())
		}
	})

	t.Run("Búsqueda de complementos por UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/facturas/aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa/complementos", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var respuesta struct {
			Complementos []struct {
				UUID string `json:"uuid"`
			} `json:"complementos"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &respuesta); err != nil {
			t.Fatalf("Respuesta ilegible: %v", err)
		}
		if len(respuesta.Complementos) != 1 || respuesta.Complementos[0].UUID != "cccccccc-cccc-cccc-cccc-cccccccccccc" {
			t.Errorf("Complementos inesperados: %s", w.Body.String())
		}
	})

	t.Run("Sin complementos responde 200 con lista vacía", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/facturas/bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb/complementos", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Cero resultados no es error: esperaba 200, obtuve %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"complementos":[]`) {
			t.Errorf("Esperaba lista vacía explícita: %s", w.Body.String())
		}
	})

	t.Run("Exportar CSV descarga la vista filtrada", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/exportar/csv?estatus=Vigente", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Esperaba 200, obtuve %d", w.Code)
		}
		if disp := w.Header().Get("Content-Disposition"); !strings.Contains(disp, "facturas_filtradas_") {
			t.Errorf("Encabezado de descarga inesperado: %q", disp)
		}
		lineas := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		if len(lineas) != 3 { // encabezado + 2 vigentes
			t.Errorf("Esperaba 3 líneas, obtuve %d:\n%s", len(lineas), w.Body.String())
		}
	})

	t.Run("Carga corrupta conserva la sesión anterior", func(t *testing.T) {
		w := cargarArchivo(t, router, "esto no es un libro", "facturas.xlsx")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Esperaba 400, obtuve %d", w.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/vistas/resumen", nil)
		wr := httptest.NewRecorder()
		router.ServeHTTP(wr, req)
		if wr.Code != http.StatusOK || !strings.Contains(wr.Body.String(), `"total_facturas":3`) {
			t.Errorf("La sesión anterior debió sobrevivir a la carga fallida: %d %s", wr.Code, wr.Body.String())
		}
	})
}
