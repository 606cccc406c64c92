// cmd/web/main.go
package main

import (
	"log"

	"github.com/AlonsoRmz/facturador/internal/api/handlers"
	"github.com/AlonsoRmz/facturador/internal/api/middleware"
	"github.com/AlonsoRmz/facturador/internal/api/responses"
	"github.com/AlonsoRmz/facturador/internal/config"
	"github.com/AlonsoRmz/facturador/internal/core/loader"
	"github.com/AlonsoRmz/facturador/internal/core/report"
	"github.com/AlonsoRmz/facturador/internal/core/session"
	"github.com/gin-gonic/gin"
)

func main() {
	responses.InitLogger()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Error cargando configuración: %v", err)
	}

	loaderService := loader.NewService()
	reportService := report.NewService()
	sesion := session.NewManager()

	facturasHandler := handlers.NewFacturasHandler(loaderService, sesion)
	vistasHandler := handlers.NewVistasHandler(reportService, sesion)

	if cfg.ModoProduccion {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(responses.Logger))
	router.Use(middleware.CORS(cfg.OrigenesCORS))
	router.MaxMultipartMemory = cfg.LimiteCargaMB << 20

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/facturas/cargar", facturasHandler.HandleCargar)
		apiV1.GET("/facturas/:uuid/complementos", facturasHandler.HandleComplementosDe)

		apiV1.GET("/vistas/resumen", vistasHandler.HandleResumen)
		apiV1.GET("/vistas/emitidas", vistasHandler.HandleEmitidas)
		apiV1.GET("/vistas/complementos", vistasHandler.HandleComplementos)
		apiV1.GET("/vistas/gestion", vistasHandler.HandleGestion)

		apiV1.GET("/exportar/csv", vistasHandler.HandleExportarCSV)
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	log.Printf("🚀 Servidor iniciado y escuchando en el puerto %s", cfg.Puerto)

	if err := router.Run(":" + cfg.Puerto); err != nil {
		log.Fatal("Falla al iniciar el servidor: ", err)
	}
}
