// internal/api/responses/responses.go
package responses

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger es el logger estructurado global de la aplicación.
var Logger *zap.Logger

// InitLogger inicializa el logger de producción. Debe llamarse una sola vez
// al arrancar, antes de registrar rutas.
func InitLogger() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("no se pudo inicializar el logger: " + err.Error())
	}
	Logger = logger
}

// Error responde un error JSON uniforme y lo deja en la bitácora. El detalle
// opcional se registra pero no siempre se expone al cliente tal cual.
func Error(c *gin.Context, status int, mensaje string, detalles ...string) {
	campos := []zap.Field{
		zap.Int("status", status),
		zap.String("ruta", c.FullPath()),
	}
	for _, d := range detalles {
		campos = append(campos, zap.String("detalle", d))
	}
	if Logger != nil {
		Logger.Warn(mensaje, campos...)
	}

	cuerpo := gin.H{"error": mensaje}
	if len(detalles) > 0 {
		cuerpo["detalles"] = detalles
	}
	c.AbortWithStatusJSON(status, cuerpo)
}

// OK responde 200 con el cuerpo dado.
func OK(c *gin.Context, cuerpo interface{}) {
	c.JSON(200, cuerpo)
}
