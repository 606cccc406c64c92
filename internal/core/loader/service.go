// internal/core/loader/service.go
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/AlonsoRmz/facturador/internal/domain"
	"github.com/google/uuid"
	"github.com/schollz/closestmatch"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Service define la interfaz del cargador de archivos de facturas.
type Service interface {
	Cargar(archivo io.Reader, nombreArchivo string) (*domain.Dataset, error)
}

type service struct{}

// NewService crea una nueva instancia del cargador.
func NewService() Service {
	return &service{}
}

var (
	uuidRegex      = regexp.MustCompile(`[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}`)
	mesXMLRegex    = regexp.MustCompile(`\d{6}`)
	noAlfanumRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
	espaciosRegex  = regexp.MustCompile(`\s+`)
)

// layouts de fecha aceptados, en orden de preferencia. El primero es el que
// produce el exportador de CSV, los demás cubren los exports del SAT.
var layoutsFecha = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

func normalizarTexto(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = noAlfanumRegex.ReplaceAllString(result, " ")
	result = espaciosRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Cargar lee el archivo completo y produce el dataset normalizado. Cualquier
// falla de lectura regresa un único error y ningún dataset parcial; los
// valores de celda ilegibles (fechas, montos) se degradan por celda y nunca
// abortan la carga.
func (svc *service) Cargar(archivo io.Reader, nombreArchivo string) (*domain.Dataset, error) {
	filas, err := svc.leerFilas(archivo, nombreArchivo)
	if err != nil {
		return nil, fmt.Errorf("error al leer el archivo de facturas: %w", err)
	}
	return svc.construirDataset(filas)
}

// leerFilas convierte cualquier formato soportado a una matriz de celdas.
// La extensión decide el parser; un .xls que no abre como binario se
// reintenta como .xlsx porque varios sistemas exportan OOXML con extensión
// vieja.
func (svc *service) leerFilas(archivo io.Reader, nombreArchivo string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(nombreArchivo))
	switch ext {
	case ".xls":
		data, err := io.ReadAll(archivo)
		if err != nil {
			return nil, err
		}
		filas, err := svc.leerXLS(bytes.NewReader(data))
		if err != nil {
			if filasX, errX := svc.leerXLSX(bytes.NewReader(data)); errX == nil {
				return filasX, nil
			}
			return nil, err
		}
		return filas, nil
	case ".xlsx":
		return svc.leerXLSX(archivo)
	case ".csv":
		return svc.leerCSV(archivo)
	default:
		return nil, fmt.Errorf("formato de archivo no soportado: %q", ext)
	}
}

func (svc *service) leerXLS(archivo io.ReadSeeker) ([][]string, error) {
	workbook, err := xls.OpenReader(archivo)
	if err != nil {
		return nil, err
	}

	var filas [][]string
	for _, sheet := range workbook.GetSheets() {
		for _, row := range sheet.GetRows() {
			var fila []string
			for _, cell := range row.GetCols() {
				fila = append(fila, cell.GetString())
			}
			filas = append(filas, fila)
		}
	}
	return filas, nil
}

func (svc *service) leerXLSX(archivo io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(archivo)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hojas := f.GetSheetList()
	if len(hojas) == 0 {
		return nil, fmt.Errorf("el archivo no contiene hojas")
	}
	return f.GetRows(hojas[0])
}

func (svc *service) leerCSV(archivo io.Reader) ([][]string, error) {
	reader := csv.NewReader(archivo)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// columnas reconocidas y sus palabras clave de búsqueda sobre el encabezado
// normalizado. Todas son opcionales: la ausencia se registra en el Esquema y
// cada vista degrada por su cuenta.
var columnasReconocidas = []struct {
	nombre   string
	keywords []string
}{
	{"uuid", []string{"UUID", "FOLIO FISCAL"}},
	{"fecha", []string{"FECHA"}},
	{"metodo", []string{"METODO DE PAGO", "METODO"}},
	{"forma", []string{"FORMA DE PAGO", "FORMA"}},
	{"estatus", []string{"ESTATUS", "ESTADO"}},
	{"total", []string{"TOTAL", "MONTO", "IMPORTE"}},
	{"relacionados", []string{"RELACIONADOS", "RELACION"}},
	{"xml", []string{"XML"}},
}

func (svc *service) encontrarFilaEncabezado(filas [][]string) int {
	maxFilas := 40
	if len(filas) < maxFilas {
		maxFilas = len(filas)
	}
	for i := 0; i < maxFilas; i++ {
		for _, celda := range filas[i] {
			n := normalizarTexto(celda)
			if strings.Contains(n, "UUID") || strings.Contains(n, "FOLIO FISCAL") {
				return i
			}
		}
	}
	return 0
}

// resolverColumnas localiza cada columna reconocida en el encabezado.
// Tres pasadas por columna: igualdad exacta, contención de palabra clave y
// por último proximidad con closestmatch, aceptada solo si el encabezado
// elegido conserva la primera palabra de la clave (evita que una columna
// ausente se resuelva contra cualquier otra).
func (svc *service) resolverColumnas(encabezado []string) map[string]int {
	normCols := make([]string, len(encabezado))
	for i, h := range encabezado {
		normCols[i] = normalizarTexto(h)
	}

	var llaves []string
	for _, nc := range normCols {
		if nc != "" {
			llaves = append(llaves, nc)
		}
	}
	var cm *closestmatch.ClosestMatch
	if len(llaves) > 0 {
		cm = closestmatch.New(llaves, []int{2, 3})
	}

	indices := make(map[string]int)
	reclamadas := make(map[int]bool)

	buscar := func(keywords []string) int {
		for _, kw := range keywords {
			nkw := normalizarTexto(kw)
			for idx, nc := range normCols {
				if !reclamadas[idx] && nc == nkw {
					return idx
				}
			}
		}
		for _, kw := range keywords {
			nkw := normalizarTexto(kw)
			for idx, nc := range normCols {
				if !reclamadas[idx] && nc != "" && strings.Contains(nc, nkw) {
					return idx
				}
			}
		}
		if cm != nil {
			for _, kw := range keywords {
				nkw := normalizarTexto(kw)
				token := strings.Fields(nkw)[0]
				match := cm.Closest(nkw)
				if match == "" || !strings.Contains(match, token) {
					continue
				}
				for idx, nc := range normCols {
					if !reclamadas[idx] && nc == match {
						return idx
					}
				}
			}
		}
		return -1
	}

	for _, col := range columnasReconocidas {
		if idx := buscar(col.keywords); idx != -1 {
			indices[col.nombre] = idx
			reclamadas[idx] = true
		}
	}
	return indices
}

func (svc *service) construirDataset(filas [][]string) (*domain.Dataset, error) {
	if len(filas) == 0 {
		return nil, fmt.Errorf("el archivo está vacío")
	}

	idxEncabezado := svc.encontrarFilaEncabezado(filas)
	indices := svc.resolverColumnas(filas[idxEncabezado])

	esquema := domain.Esquema{
		TieneUUID:         tiene(indices, "uuid"),
		TieneFecha:        tiene(indices, "fecha"),
		TieneMetodoPago:   tiene(indices, "metodo"),
		TieneFormaPago:    tiene(indices, "forma"),
		TieneEstatus:      tiene(indices, "estatus"),
		TieneTotal:        tiene(indices, "total"),
		TieneRelacionados: tiene(indices, "relacionados"),
		TieneXML:          tiene(indices, "xml"),
	}

	var facturas []domain.Factura
	for i := idxEncabezado + 1; i < len(filas); i++ {
		fila := filas[i]
		if filaVacia(fila) {
			continue
		}

		valor := func(col string) string {
			idx, ok := indices[col]
			if !ok || idx >= len(fila) {
				return ""
			}
			return strings.TrimSpace(fila[idx])
		}

		f := domain.Factura{
			UUID:         valor("uuid"),
			MetodoPago:   valor("metodo"),
			FormaPago:    valor("forma"),
			Estatus:      valor("estatus"),
			Relacionados: valor("relacionados"),
		}

		if raw := valor("fecha"); raw != "" {
			if fecha, ok := parsearFecha(raw); ok {
				f.Fecha = &fecha
				f.Mes = fecha.Format("2006-01")
			}
		}
		if raw := valor("total"); raw != "" {
			f.Total = parsearMonto(raw)
		}
		if raw := valor("xml"); raw != "" {
			f.MesXML = mesXMLRegex.FindString(raw)
		}
		f.UUIDsRelacionados = ExtraerUUIDs(f.Relacionados)

		facturas = append(facturas, f)
	}

	return &domain.Dataset{Facturas: facturas, Esquema: esquema}, nil
}

// ExtraerUUIDs regresa, en orden de aparición, todos los UUID bien formados
// dentro de un texto libre. Acepta indistintamente el texto original de la
// columna Relacionados o la forma unida con "|" que produce el exportador.
// Sin coincidencias regresa nil, nunca una lista vacía.
func ExtraerUUIDs(texto string) []string {
	if texto == "" {
		return nil
	}
	candidatos := uuidRegex.FindAllString(texto, -1)
	var resultado []string
	for _, c := range candidatos {
		if _, err := uuid.Parse(c); err == nil {
			resultado = append(resultado, c)
		}
	}
	return resultado
}

func parsearFecha(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range layoutsFecha {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parsearMonto tolera símbolos de moneda, separadores de miles y coma
// decimal. Un valor ilegible se degrada a cero en vez de abortar la carga.
func parsearMonto(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func filaVacia(fila []string) bool {
	for _, celda := range fila {
		if strings.TrimSpace(celda) != "" {
			return false
		}
	}
	return true
}

func tiene(indices map[string]int, col string) bool {
	_, ok := indices[col]
	return ok
}
