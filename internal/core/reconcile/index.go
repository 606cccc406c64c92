// internal/core/reconcile/index.go
package reconcile

import (
	"strings"

	"github.com/AlonsoRmz/facturador/internal/domain"
)

// Indice es el conjunto de todos los UUID que aparecen referidos por algún
// complemento del dataset. Las llaves se guardan en minúsculas para que la
// pertenencia no dependa de cómo venga capitalizado el UUID en el archivo.
type Indice map[string]struct{}

// BuildIndex recorre el dataset COMPLETO y une las relaciones de cada
// renglón. Se construye deliberadamente sobre los datos sin filtrar: un
// complemento oculto por el filtro activo sigue contando para conciliar la
// factura que referencia. Es función pura del dataset y se recalcula entera
// en cada carga.
func BuildIndex(ds *domain.Dataset) Indice {
	indice := make(Indice)
	if ds == nil {
		return indice
	}
	for _, f := range ds.Facturas {
		for _, u := range f.UUIDsRelacionados {
			indice[strings.ToLower(u)] = struct{}{}
		}
	}
	return indice
}

// Contiene reporta si el UUID dado está referido por algún complemento.
func (i Indice) Contiene(uuid string) bool {
	_, ok := i[strings.ToLower(uuid)]
	return ok
}

// ReceiptsFor regresa, en el orden del dataset, todos los renglones cuya
// lista de relaciones contiene el UUID dado. Cero resultados es un desenlace
// normal ("sin complemento"), no un error. Busca siempre sobre el dataset
// completo, sin importar el filtro activo.
func ReceiptsFor(ds *domain.Dataset, buscado string) []domain.Factura {
	var resultado []domain.Factura
	if ds == nil || strings.TrimSpace(buscado) == "" {
		return resultado
	}
	objetivo := strings.ToLower(strings.TrimSpace(buscado))
	for _, f := range ds.Facturas {
		for _, u := range f.UUIDsRelacionados {
			if strings.ToLower(u) == objetivo {
				resultado = append(resultado, f)
				break
			}
		}
	}
	return resultado
}
