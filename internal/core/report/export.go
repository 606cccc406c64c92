// internal/core/report/export.go
package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/AlonsoRmz/facturador/internal/domain"
)

// Columnas del CSV exportado, en orden canónico. Solo se escriben las que el
// esquema marca como presentes en el archivo original.
var columnasExportacion = []struct {
	encabezado string
	columna    string
}{
	{"UUID", "uuid"},
	{"Fecha", "fecha"},
	{"Método de Pago", "metodo"},
	{"Forma de Pago", "forma"},
	{"Estatus", "estatus"},
	{"Total", "total"},
	{"Relacionados", "relacionados"},
	{"XML", "xml"},
}

// ExportarCSV serializa la vista filtrada a CSV UTF-8 separado por comas.
// La salida es determinista: mismos datos y mismo filtro producen bytes
// idénticos. La lista de UUID relacionados se materializa unida con "|"
// (los UUID nunca contienen ese carácter) y el cargador la vuelve a separar
// al reimportar, así que el export es reversible.
func (svc *service) ExportarCSV(ds *domain.Dataset, f domain.Filtro) ([]byte, error) {
	vista := svc.Filtrar(ds, f)

	var presentes []struct {
		encabezado string
		columna    string
	}
	for _, col := range columnasExportacion {
		if columnaPresente(ds.Esquema, col.columna) {
			presentes = append(presentes, col)
		}
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	encabezado := make([]string, len(presentes))
	for i, col := range presentes {
		encabezado[i] = col.encabezado
	}
	if err := writer.Write(encabezado); err != nil {
		return nil, err
	}

	for _, fac := range vista {
		registro := make([]string, len(presentes))
		for i, col := range presentes {
			registro[i] = valorExportacion(fac, col.columna)
		}
		if err := writer.Write(registro); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buffer.Bytes(), writer.Error()
}

func columnaPresente(esq domain.Esquema, columna string) bool {
	switch columna {
	case "uuid":
		return esq.TieneUUID
	case "fecha":
		return esq.TieneFecha
	case "metodo":
		return esq.TieneMetodoPago
	case "forma":
		return esq.TieneFormaPago
	case "estatus":
		return esq.TieneEstatus
	case "total":
		return esq.TieneTotal
	case "relacionados":
		return esq.TieneRelacionados
	case "xml":
		return esq.TieneXML
	default:
		return false
	}
}

func valorExportacion(fac domain.Factura, columna string) string {
	switch columna {
	case "uuid":
		return fac.UUID
	case "fecha":
		if fac.Fecha == nil {
			return ""
		}
		return fac.Fecha.Format("2006-01-02 15:04:05")
	case "metodo":
		return fac.MetodoPago
	case "forma":
		return fac.FormaPago
	case "estatus":
		return fac.Estatus
	case "total":
		return strconv.FormatFloat(fac.Total, 'f', 2, 64)
	case "relacionados":
		return strings.Join(fac.UUIDsRelacionados, "|")
	case "xml":
		return fac.MesXML
	default:
		return ""
	}
}
