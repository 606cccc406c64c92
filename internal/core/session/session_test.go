package session

import (
	"errors"
	"testing"

	"github.com/AlonsoRmz/facturador/internal/domain"
)

func TestManager(t *testing.T) {
	t.Run("Sin carga previa regresa ErrSinDatos", func(t *testing.T) {
		m := NewManager()
		if _, err := m.Actual(); !errors.Is(err, domain.ErrSinDatos) {
			t.Errorf("Esperaba ErrSinDatos, obtuve %v", err)
		}
	})

	t.Run("Reemplazar construye el índice sobre el dataset completo", func(t *testing.T) {
		m := NewManager()
		ds := &domain.Dataset{Facturas: []domain.Factura{
			{UUID: "cccccccc-cccc-cccc-cccc-cccccccccccc", UUIDsRelacionados: []string{"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"}},
		}}
		m.Reemplazar(ds, "facturas.xls")

		estado, err := m.Actual()
		if err != nil {
			t.Fatalf("Error inesperado: %v", err)
		}
		if estado.NombreArchivo != "facturas.xls" {
			t.Errorf("Nombre de archivo inesperado: %q", estado.NombreArchivo)
		}
		if !estado.Indice.Contiene("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa") {
			t.Error("El índice no se construyó al reemplazar")
		}
	})

	t.Run("Una nueva carga sustituye por completo a la anterior", func(t *testing.T) {
		m := NewManager()
		m.Reemplazar(&domain.Dataset{Facturas: make([]domain.Factura, 5)}, "viejo.xls")
		m.Reemplazar(&domain.Dataset{Facturas: make([]domain.Factura, 2)}, "nuevo.xls")

		estado, _ := m.Actual()
		if len(estado.Dataset.Facturas) != 2 || estado.NombreArchivo != "nuevo.xls" {
			t.Errorf("El estado no se reemplazó: %+v", estado)
		}
	})

	t.Run("Limpiar regresa a la pantalla de bienvenida", func(t *testing.T) {
		m := NewManager()
		m.Reemplazar(&domain.Dataset{}, "facturas.xls")
		m.Limpiar()
		if _, err := m.Actual(); !errors.Is(err, domain.ErrSinDatos) {
			t.Errorf("Esperaba ErrSinDatos tras limpiar, obtuve %v", err)
		}
	})
}
