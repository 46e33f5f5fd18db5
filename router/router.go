package router

import (
	"time"

	"feeledger/api"
	"feeledger/config"
	_ "feeledger/docs"
	"feeledger/middleware"
	"feeledger/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter builds the gin engine and wires every handler.
func SetupRouter(cfg *config.Config, log *logrus.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())

	// shared services
	store := service.NewLedgerStore()
	sequencer := service.NewReceiptSequencer()
	var notifier service.Notifier
	if cfg.Email.Enabled {
		notifier = service.NewReceiptMailer(&cfg.Email, cfg.Institution.Name)
	}
	recorder := service.NewPaymentRecorder(store, sequencer, notifier, log)
	manager := service.NewBulkManager(store, log)
	reporter := service.NewReporter()

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			// login is brute-force rate limited per IP
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			studentHandler := api.NewStudentHandler()
			students := authorized.Group("/students")
			{
				students.POST("", studentHandler.Create)
				students.GET("", studentHandler.List)
				students.GET("/:id", studentHandler.Get)
			}

			ledgerHandler := api.NewLedgerHandler(store)
			paymentHandler := api.NewPaymentHandler(recorder)
			entries := authorized.Group("/entries")
			{
				entries.GET("", ledgerHandler.List)
				entries.GET("/:id", ledgerHandler.Get)
				entries.DELETE("/:id", ledgerHandler.Delete)
				entries.POST("/:id/payments", paymentHandler.RecordPayment)
			}
			authorized.POST("/transactions", paymentHandler.RecordStandalone)
			authorized.GET("/payments", paymentHandler.List)

			bulkHandler := api.NewBulkHandler(manager)
			bulk := authorized.Group("/bulk")
			{
				bulk.POST("/generate", bulkHandler.Generate)
				bulk.POST("/delete", bulkHandler.BulkDelete)
				bulk.GET("/deletable-options", bulkHandler.DeletableOptions)
			}

			reportHandler := api.NewReportHandler(reporter)
			reports := authorized.Group("/reports")
			{
				reports.GET("/classes", reportHandler.ClassSummaries)
				reports.GET("/dashboard", reportHandler.Dashboard)
			}

			expenditureHandler := api.NewExpenditureHandler(sequencer)
			expenditures := authorized.Group("/expenditures")
			{
				expenditures.POST("", expenditureHandler.Create)
				expenditures.GET("", expenditureHandler.List)
				expenditures.DELETE("/:id", expenditureHandler.Delete)
			}

			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/excel", exportHandler.ExportExcel)
				export.GET("/csv", exportHandler.ExportCSV)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware allows cross-origin access for browser clients.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
