// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config reúne los ajustes del servidor. Se lee de un config.yaml opcional;
// sin archivo se usan los valores por defecto y PORT del ambiente sigue
// teniendo la última palabra, como en los despliegues en contenedor.
type Config struct {
	Puerto         string   `yaml:"puerto"`
	OrigenesCORS   []string `yaml:"origenes_cors"`
	LimiteCargaMB  int64    `yaml:"limite_carga_mb"`
	ModoProduccion bool     `yaml:"modo_produccion"`
}

// Default regresa la configuración por omisión.
func Default() Config {
	return Config{
		Puerto:        "8080",
		OrigenesCORS:  []string{"*"},
		LimiteCargaMB: 32,
	}
}

// Load lee el archivo YAML indicado sobre los valores por defecto. Un
// archivo inexistente no es error; un archivo ilegible sí.
func Load(ruta string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ruta)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.conAmbiente(), nil
		}
		return cfg, fmt.Errorf("no se pudo leer la configuración %q: %w", ruta, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("configuración %q inválida: %w", ruta, err)
	}
	return cfg.conAmbiente(), nil
}

func (c Config) conAmbiente() Config {
	if puerto := os.Getenv("PORT"); puerto != "" {
		c.Puerto = puerto
	}
	return c
}
