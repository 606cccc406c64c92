package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AlonsoRmz/facturador/internal/core/loader"
	"github.com/AlonsoRmz/facturador/internal/domain"
)

// TestExportarCSV verifica el contrato del exportador: bytes deterministas,
// solo columnas presentes y lista de relaciones unida con pipe.
func TestExportarCSV(t *testing.T) {
	svc := NewService()
	ds := datasetPrueba()

	t.Run("Salida determinista para la misma entrada", func(t *testing.T) {
		primera, err := svc.ExportarCSV(ds, domain.Filtro{})
		if err != nil {
			t.Fatalf("Error exportando: %v", err)
		}
		segunda, err := svc.ExportarCSV(ds, domain.Filtro{})
		if err != nil {
			t.Fatalf("Error exportando: %v", err)
		}
		if !bytes.Equal(primera, segunda) {
			t.Error("Dos exportaciones de la misma vista difieren byte a byte")
		}
	})

	t.Run("Relaciones unidas con pipe", func(t *testing.T) {
		multi := &domain.Dataset{
			Esquema: domain.Esquema{TieneUUID: true, TieneRelacionados: true},
			Facturas: []domain.Factura{{
				UUID:              "11111111-1111-1111-1111-111111111111",
				UUIDsRelacionados: []string{"22222222-2222-2222-2222-222222222222", "33333333-3333-3333-3333-333333333333"},
			}},
		}
		salida, err := svc.ExportarCSV(multi, domain.Filtro{})
		if err != nil {
			t.Fatalf("Error exportando: %v", err)
		}
		if !strings.Contains(string(salida), "22222222-2222-2222-2222-222222222222|33333333-3333-3333-3333-333333333333") {
			t.Errorf("Salida sin la lista unida con pipe:\n%s", salida)
		}
	})

	t.Run("Solo se escriben las columnas del esquema", func(t *testing.T) {
		parcial := &domain.Dataset{
			Esquema:  domain.Esquema{TieneUUID: true, TieneEstatus: true},
			Facturas: []domain.Factura{{UUID: "11111111-1111-1111-1111-111111111111", Estatus: "Vigente"}},
		}
		salida, err := svc.ExportarCSV(parcial, domain.Filtro{})
		if err != nil {
			t.Fatalf("Error exportando: %v", err)
		}
		encabezado := strings.SplitN(string(salida), "\n", 2)[0]
		if strings.Contains(encabezado, "Total") || strings.Contains(encabezado, "Fecha") {
			t.Errorf("Encabezado con columnas ausentes: %s", encabezado)
		}
	})
}

// TestExportarCSVIdaYVuelta exporta la vista filtrada, la vuelve a cargar con
// el cargador real y verifica que sobreviven el número de renglones, la suma
// de totales y las relaciones.
func TestExportarCSVIdaYVuelta(t *testing.T) {
	svc := NewService()
	ds := datasetPrueba()

	salida, err := svc.ExportarCSV(ds, domain.Filtro{})
	if err != nil {
		t.Fatalf("Error exportando: %v", err)
	}

	recargado, err := loader.NewService().Cargar(bytes.NewReader(salida), "facturas_filtradas.csv")
	if err != nil {
		t.Fatalf("Error recargando el CSV exportado: %v", err)
	}

	vista := svc.Filtrar(recargado, domain.Filtro{})
	if len(vista) != len(ds.Facturas) {
		t.Fatalf("Esperaba %d renglones tras la ida y vuelta, obtuve %d", len(ds.Facturas), len(vista))
	}

	var sumaOriginal, sumaRecargada float64
	for _, f := range ds.Facturas {
		sumaOriginal += f.Total
	}
	for _, f := range vista {
		sumaRecargada += f.Total
	}
	if sumaOriginal != sumaRecargada {
		t.Errorf("Suma de totales alterada: %v contra %v", sumaOriginal, sumaRecargada)
	}

	// Las relaciones del complemento sobreviven vía la forma unida con pipe.
	var conRelaciones int
	for _, f := range vista {
		conRelaciones += len(f.UUIDsRelacionados)
	}
	if conRelaciones != 1 {
		t.Errorf("Esperaba 1 relación tras recargar, obtuve %d", conRelaciones)
	}

	// Y el esquema del CSV recargado reconoce las mismas columnas.
	if !recargado.Esquema.TieneUUID || !recargado.Esquema.TieneFecha || !recargado.Esquema.TieneRelacionados {
		t.Errorf("Esquema recargado incompleto: %+v", recargado.Esquema)
	}
}
