// internal/core/report/service.go
package report

import (
	"sort"
	"strings"

	"github.com/AlonsoRmz/facturador/internal/core/reconcile"
	"github.com/AlonsoRmz/facturador/internal/domain"
)

// Service define las consultas de solo lectura sobre un dataset cargado.
// Ninguna operación muta sus entradas; cada llamada recalcula desde el
// dataset base más el filtro vigente.
type Service interface {
	Filtrar(ds *domain.Dataset, f domain.Filtro) []domain.Factura
	Resumen(ds *domain.Dataset) domain.ResumenGeneral
	Emitidas(ds *domain.Dataset, f domain.Filtro) domain.FacturasEmitidas
	Complementos(ds *domain.Dataset, f domain.Filtro) domain.ComplementosPago
	Gestion(ds *domain.Dataset, f domain.Filtro, indice reconcile.Indice) domain.GestionPagos
	ExportarCSV(ds *domain.Dataset, f domain.Filtro) ([]byte, error)
}

type service struct{}

// NewService crea una nueva instancia del servicio de reportes.
func NewService() Service {
	return &service{}
}

func contieneInsensible(valor, buscado string) bool {
	return strings.Contains(strings.ToLower(valor), strings.ToLower(buscado))
}

// #############################################################################
// #                              MOTOR DE FILTROS                             #
// #############################################################################

// Filtrar regresa el subconjunto de renglones que satisface la conjunción de
// los predicados activos del filtro, en el orden original del dataset. Un
// predicado sin selección deja pasar todo, y un predicado cuya columna no
// existe en el archivo se ignora por completo.
func (svc *service) Filtrar(ds *domain.Dataset, f domain.Filtro) []domain.Factura {
	if ds == nil {
		return nil
	}

	resultado := make([]domain.Factura, 0, len(ds.Facturas))
	for _, fac := range ds.Facturas {
		if !pasaFiltro(fac, f, ds.Esquema) {
			continue
		}
		resultado = append(resultado, fac)
	}
	return resultado
}

func pasaFiltro(fac domain.Factura, f domain.Filtro, esq domain.Esquema) bool {
	// El estatus se compara por subcadena, sin distinguir mayúsculas: los
	// exports traen variantes como "Vigente ✓" o "CANCELADO".
	if esq.TieneEstatus && len(f.Estatus) > 0 {
		alguno := false
		for _, e := range f.Estatus {
			if contieneInsensible(fac.Estatus, e) {
				alguno = true
				break
			}
		}
		if !alguno {
			return false
		}
	}

	if esq.TieneFecha && (f.Desde != nil || f.Hasta != nil) {
		if fac.Fecha == nil {
			return false
		}
		if f.Desde != nil && fac.Fecha.Before(*f.Desde) {
			return false
		}
		if f.Hasta != nil && fac.Fecha.After(*f.Hasta) {
			return false
		}
	}

	if esq.TieneMetodoPago && len(f.Metodos) > 0 && !enConjunto(fac.MetodoPago, f.Metodos) {
		return false
	}
	if esq.TieneFormaPago && len(f.Formas) > 0 && !enConjunto(fac.FormaPago, f.Formas) {
		return false
	}
	return true
}

func enConjunto(valor string, conjunto []string) bool {
	for _, c := range conjunto {
		if valor == c {
			return true
		}
	}
	return false
}

// #############################################################################
// #                         CONSULTAS DE CONCILIACIÓN                         #
// #############################################################################

// EsPPD y EsPUE clasifican el método de pago por subcadena: un valor como
// "PPD - Pago en parcialidades" sigue contando como PPD.
func EsPPD(fac domain.Factura) bool { return contieneInsensible(fac.MetodoPago, "PPD") }

func EsPUE(fac domain.Factura) bool { return contieneInsensible(fac.MetodoPago, "PUE") }

// PPDSinComplemento regresa las facturas PPD de la vista cuyo UUID no está
// referido por ningún complemento del índice. El índice se construye sobre el
// dataset completo, así que un complemento fuera del filtro activo sigue
// conciliando a su factura.
func PPDSinComplemento(vista []domain.Factura, indice reconcile.Indice) []domain.Factura {
	var resultado []domain.Factura
	for _, fac := range vista {
		if EsPPD(fac) && !indice.Contiene(fac.UUID) {
			resultado = append(resultado, fac)
		}
	}
	return resultado
}

// PUEConComplemento regresa las facturas PUE de la vista que sí aparecen
// referidas en el índice, lo cual normalmente señala un complemento emitido
// de más.
func PUEConComplemento(vista []domain.Factura, indice reconcile.Indice) []domain.Factura {
	var resultado []domain.Factura
	for _, fac := range vista {
		if EsPUE(fac) && indice.Contiene(fac.UUID) {
			resultado = append(resultado, fac)
		}
	}
	return resultado
}

// ConteoPor produce la tabla de frecuencias de una columna dentro de la
// vista, ordenada por cantidad descendente y por valor para desempatar.
// Columnas aceptadas: "metodo", "forma", "estatus", "mes", "mes_xml".
func ConteoPor(vista []domain.Factura, columna string) []domain.Conteo {
	cuentas := make(map[string]int)
	for _, fac := range vista {
		v := valorColumna(fac, columna)
		if v == "" {
			continue
		}
		cuentas[v]++
	}

	resultado := make([]domain.Conteo, 0, len(cuentas))
	for v, c := range cuentas {
		resultado = append(resultado, domain.Conteo{Valor: v, Cantidad: c})
	}
	sort.Slice(resultado, func(i, j int) bool {
		if resultado[i].Cantidad != resultado[j].Cantidad {
			return resultado[i].Cantidad > resultado[j].Cantidad
		}
		return resultado[i].Valor < resultado[j].Valor
	})
	return resultado
}

// SeriePorMes agrupa la vista por la columna de mes indicada y ordena los
// periodos cronológicamente (el orden lexicográfico de AAAA-MM coincide con
// el cronológico).
func SeriePorMes(vista []domain.Factura, columna string) []domain.Conteo {
	cuentas := make(map[string]int)
	for _, fac := range vista {
		v := valorColumna(fac, columna)
		if v == "" {
			continue
		}
		cuentas[v]++
	}

	resultado := make([]domain.Conteo, 0, len(cuentas))
	for v, c := range cuentas {
		resultado = append(resultado, domain.Conteo{Valor: v, Cantidad: c})
	}
	sort.Slice(resultado, func(i, j int) bool {
		return resultado[i].Valor < resultado[j].Valor
	})
	return resultado
}

func valorColumna(fac domain.Factura, columna string) string {
	switch columna {
	case "metodo":
		return fac.MetodoPago
	case "forma":
		return fac.FormaPago
	case "estatus":
		return fac.Estatus
	case "mes":
		return fac.Mes
	case "mes_xml":
		return fac.MesXML
	default:
		return ""
	}
}

// #############################################################################
// #                              VISTAS                                       #
// #############################################################################

// Resumen calcula las métricas y distribuciones de la vista principal sobre
// el dataset completo, como lo hace la pantalla original: los filtros de la
// sesión no recortan el resumen.
func (svc *service) Resumen(ds *domain.Dataset) domain.ResumenGeneral {
	resumen := domain.ResumenGeneral{TotalFacturas: len(ds.Facturas)}

	if ds.Esquema.TieneEstatus {
		for _, fac := range ds.Facturas {
			if contieneInsensible(fac.Estatus, "Vigente") {
				resumen.Vigentes++
			}
			if contieneInsensible(fac.Estatus, "Cancelado") {
				resumen.Canceladas++
			}
		}
	}
	if ds.Esquema.TieneMetodoPago {
		for _, fac := range ds.Facturas {
			if EsPPD(fac) {
				resumen.FacturasPPD++
			}
		}
		resumen.PorMetodoPago = ConteoPor(ds.Facturas, "metodo")
	}
	if ds.Esquema.TieneFecha {
		resumen.EvolucionMensual = SeriePorMes(ds.Facturas, "mes")
	}
	return resumen
}

// Emitidas regresa el listado filtrado, ordenado por fecha descendente
// cuando la columna existe (las fechas ilegibles van al final).
func (svc *service) Emitidas(ds *domain.Dataset, f domain.Filtro) domain.FacturasEmitidas {
	vista := svc.Filtrar(ds, f)

	if ds.Esquema.TieneFecha {
		sort.SliceStable(vista, func(i, j int) bool {
			a, b := vista[i].Fecha, vista[j].Fecha
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.After(*b)
			}
		})
	}

	return domain.FacturasEmitidas{
		Mostradas: len(vista),
		DelTotal:  len(ds.Facturas),
		Facturas:  vista,
	}
}

// Complementos regresa los renglones de la vista filtrada que tienen
// relaciones, junto con su distribución por mes de la referencia XML.
func (svc *service) Complementos(ds *domain.Dataset, f domain.Filtro) domain.ComplementosPago {
	var complementos []domain.Factura
	if ds.Esquema.TieneRelacionados {
		for _, fac := range svc.Filtrar(ds, f) {
			if len(fac.UUIDsRelacionados) > 0 {
				complementos = append(complementos, fac)
			}
		}
	}

	vista := domain.ComplementosPago{Complementos: complementos}
	if ds.Esquema.TieneXML {
		vista.PorMesXML = SeriePorMes(complementos, "mes_xml")
	}
	return vista
}

// Gestion arma la vista de conciliación: PPD sin complemento (contra el
// índice del dataset completo), PUE con complemento y su serie mensual.
func (svc *service) Gestion(ds *domain.Dataset, f domain.Filtro, indice reconcile.Indice) domain.GestionPagos {
	gestion := domain.GestionPagos{}
	if !ds.Esquema.TieneMetodoPago {
		return gestion
	}

	vista := svc.Filtrar(ds, f)
	if ds.Esquema.TieneRelacionados {
		gestion.PPDSinComplemento = PPDSinComplemento(vista, indice)
		gestion.PUEConComplemento = PUEConComplemento(vista, indice)
		if ds.Esquema.TieneFecha {
			gestion.PUEPorMes = SeriePorMes(gestion.PUEConComplemento, "mes")
		}
	}
	return gestion
}
