// internal/domain/models.go
package domain

import (
	"errors"
	"time"
)

// ErrSinDatos indica que ninguna consulta puede ejecutarse porque todavía
// no se ha cargado un archivo de facturas en la sesión.
var ErrSinDatos = errors.New("no hay datos cargados")

// Factura representa un renglón del archivo de facturas ya normalizado.
// Los campos derivados (Mes, MesXML, UUIDsRelacionados) se calculan una sola
// vez al cargar y el registro nunca se muta después.
type Factura struct {
	UUID       string     `json:"uuid"`
	Fecha      *time.Time `json:"fecha"`
	MetodoPago string     `json:"metodo_pago"`
	FormaPago  string     `json:"forma_pago"`
	Estatus    string     `json:"estatus"`
	Total      float64    `json:"total"`

	// Relacionados conserva el texto libre original de la columna
	// "Relacionados"; UUIDsRelacionados es la extracción ya validada.
	// nil significa "sin relaciones": nunca se guarda una lista vacía.
	Relacionados      string   `json:"relacionados,omitempty"`
	UUIDsRelacionados []string `json:"uuids_relacionados,omitempty"`

	// Mes es el periodo AAAA-MM derivado de Fecha. MesXML es el periodo
	// AAAAMM extraído de la referencia XML y se usa solo para agrupar
	// complementos.
	Mes    string `json:"mes,omitempty"`
	MesXML string `json:"mes_xml,omitempty"`
}

// Esquema indica qué columnas reconocidas estaban presentes en el archivo.
// Se decide una sola vez en la carga; cada métrica o filtro que dependa de
// una columna consulta esta estructura en lugar de sondear el dataset.
type Esquema struct {
	TieneUUID         bool `json:"tiene_uuid"`
	TieneFecha        bool `json:"tiene_fecha"`
	TieneMetodoPago   bool `json:"tiene_metodo_pago"`
	TieneFormaPago    bool `json:"tiene_forma_pago"`
	TieneEstatus      bool `json:"tiene_estatus"`
	TieneTotal        bool `json:"tiene_total"`
	TieneRelacionados bool `json:"tiene_relacionados"`
	TieneXML          bool `json:"tiene_xml"`
}

// Dataset es la tabla completa cargada de un archivo, inmutable después de
// la carga.
type Dataset struct {
	Facturas []Factura
	Esquema  Esquema
}

// Filtro reúne los predicados activos de la sesión. Un campo vacío o nil es
// un predicado inactivo y deja pasar todos los renglones, nunca al revés.
type Filtro struct {
	Estatus []string   `json:"estatus,omitempty"`
	Desde   *time.Time `json:"desde,omitempty"`
	Hasta   *time.Time `json:"hasta,omitempty"`
	Metodos []string   `json:"metodos,omitempty"`
	Formas  []string   `json:"formas,omitempty"`
}

// Activo reporta si al menos un predicado del filtro está en uso.
func (f Filtro) Activo() bool {
	return len(f.Estatus) > 0 || f.Desde != nil || f.Hasta != nil ||
		len(f.Metodos) > 0 || len(f.Formas) > 0
}

// Conteo es una entrada de una tabla de frecuencias (gráficas de
// distribución y series mensuales).
type Conteo struct {
	Valor    string `json:"valor"`
	Cantidad int    `json:"cantidad"`
}

// ResumenGeneral alimenta la vista de métricas y gráficas principales.
type ResumenGeneral struct {
	TotalFacturas    int      `json:"total_facturas"`
	Vigentes         int      `json:"vigentes"`
	Canceladas       int      `json:"canceladas"`
	FacturasPPD      int      `json:"facturas_ppd"`
	PorMetodoPago    []Conteo `json:"por_metodo_pago,omitempty"`
	EvolucionMensual []Conteo `json:"evolucion_mensual,omitempty"`
}

// FacturasEmitidas es la vista de listado filtrado.
type FacturasEmitidas struct {
	Mostradas int       `json:"mostradas"`
	DelTotal  int       `json:"del_total"`
	Facturas  []Factura `json:"facturas"`
}

// ComplementosPago es la vista de complementos: solo renglones con
// relaciones, más su distribución mensual por referencia XML.
type ComplementosPago struct {
	Complementos []Factura `json:"complementos"`
	PorMesXML    []Conteo  `json:"por_mes_xml,omitempty"`
}

// GestionPagos es la vista de conciliación PPD/PUE.
type GestionPagos struct {
	PPDSinComplemento []Factura `json:"ppd_sin_complemento"`
	PUEConComplemento []Factura `json:"pue_con_complemento"`
	PUEPorMes         []Conteo  `json:"pue_por_mes,omitempty"`
}
