// internal/api/middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger registra cada petición con el logger estructurado: método,
// ruta, estatus y duración. Sustituye al logger de consola de gin.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		logger.Info("petición atendida",
			zap.String("metodo", c.Request.Method),
			zap.String("ruta", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duracion", time.Since(inicio)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// CORS abre la API al frontend del visor. Misma política permisiva para
// todos los orígenes configurados; "*" permite cualquiera.
func CORS(origenes []string) gin.HandlerFunc {
	origen := "*"
	if len(origenes) == 1 {
		origen = origenes[0]
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origen)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
