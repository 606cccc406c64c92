// internal/core/session/session.go
package session

import (
	"sync"
	"time"

	"github.com/AlonsoRmz/facturador/internal/core/reconcile"
	"github.com/AlonsoRmz/facturador/internal/domain"
)

// Estado es el estado explícito de la sesión: el dataset cargado, su índice
// de relaciones y el filtro vigente. Se construye completo en cada carga y
// nunca se muta parcialmente; un re-upload lo reemplaza entero.
type Estado struct {
	Dataset       *domain.Dataset
	Indice        reconcile.Indice
	Filtro        domain.Filtro
	NombreArchivo string
	CargadoEn     time.Time
}

// Manager guarda el estado de la única sesión del visor. Un Estado nil es la
// pantalla de bienvenida ("sin datos"): todos los handlers lo verifican
// antes de consultar. El candado solo protege el reemplazo contra lecturas
// concurrentes del servidor; no hay escritores concurrentes.
type Manager struct {
	mu     sync.RWMutex
	estado *Estado
}

// NewManager crea un manager sin datos cargados.
func NewManager() *Manager {
	return &Manager{}
}

// Reemplazar descarta el estado anterior (si lo hay) y deja el nuevo dataset
// como única fuente de las consultas. El índice de relaciones se construye
// aquí, una sola vez por carga, sobre el dataset completo.
func (m *Manager) Reemplazar(ds *domain.Dataset, nombreArchivo string) *Estado {
	estado := &Estado{
		Dataset:       ds,
		Indice:        reconcile.BuildIndex(ds),
		NombreArchivo: nombreArchivo,
		CargadoEn:     time.Now(),
	}
	m.mu.Lock()
	m.estado = estado
	m.mu.Unlock()
	return estado
}

// Actual regresa el estado vigente, o domain.ErrSinDatos si todavía no se ha
// cargado ningún archivo.
func (m *Manager) Actual() (*Estado, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.estado == nil {
		return nil, domain.ErrSinDatos
	}
	return m.estado, nil
}

// Limpiar regresa la sesión a la pantalla de bienvenida.
func (m *Manager) Limpiar() {
	m.mu.Lock()
	m.estado = nil
	m.mu.Unlock()
}
