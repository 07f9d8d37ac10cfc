package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/veritaxlabs/pintae_backend/checks"
	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/mapping"
	"github.com/veritaxlabs/pintae_backend/middlewares"
	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/models/reports"
	"github.com/veritaxlabs/pintae_backend/registry"
	"github.com/veritaxlabs/pintae_backend/utils"
	"github.com/veritaxlabs/pintae_backend/workflow"
)

const defaultPort = "8080"

type checkRunRequest struct {
	Direction    string                      `json:"direction"`
	Buyers       []models.Buyer              `json:"buyers"`
	Headers      []models.InvoiceHeader      `json:"headers" binding:"required"`
	Lines        []models.InvoiceLine        `json:"lines"`
	Profile      *models.OrganizationProfile `json:"organization_profile"`
	CustomChecks []checks.CustomCheckConfig  `json:"custom_checks"`
	Parallel     bool                        `json:"parallel"`
}

type coverageRequest struct {
	Mappings []mapping.FieldMapping `json:"mappings" binding:"required"`
}

type evidenceExportRequest struct {
	checkRunRequest
	Mappings []mapping.FieldMapping `json:"mappings"`
}

func (req *checkRunRequest) toRunRequest(ctx context.Context) (workflow.RunRequest, error) {
	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		return workflow.RunRequest{}, err
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	return workflow.RunRequest{
		Direction:     direction,
		Buyers:        req.Buyers,
		Headers:       req.Headers,
		Lines:         req.Lines,
		Profile:       req.Profile,
		CustomConfigs: req.CustomChecks,
		CorrelationId: correlationId,
		Parallel:      req.Parallel,
	}, nil
}

// bindErrorResponse turns binding failures into the error payload clients
// see. Validator tag failures come back field by field; everything else is a
// single message.
func bindErrorResponse(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return gin.H{"error": "request validation failed", "fields": utils.ProcessValidationErrors(err)}
	}
	return gin.H{"error": err.Error()}
}

func checkRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkRunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrorResponse(err))
			return
		}

		runReq, err := req.toRunRequest(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		report, err := workflow.ExecuteCheckRun(runReq)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func coverageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req coverageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrorResponse(err))
			return
		}
		c.JSON(http.StatusOK, workflow.AnalyzeMappingSet(req.Mappings))
	}
}

func registryFieldsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("view") == "legacy" {
			c.JSON(http.StatusOK, gin.H{
				"fields": registry.LegacyUC1Fields(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"registry_version": registry.RegistryVersion,
			"fields":           registry.UC1Fields(),
		})
	}
}

func controlsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, workflow.BuildControlsEvidence())
	}
}

func checkPackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pack, err := checks.UC1Pack()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, pack)
	}
}

func evidenceExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req evidenceExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrorResponse(err))
			return
		}

		runReq, err := req.toRunRequest(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err := workflow.ExecuteCheckRun(runReq)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pack := reports.EvidencePack{
			Run:          report.Run,
			Exceptions:   report.Exceptions,
			EntityScores: report.EntityScores,
		}
		if len(req.Mappings) > 0 {
			cov := mapping.AnalyzeRegistryCoverage(req.Mappings)
			pack.Coverage = &cov
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=evidence_%s.xlsx", report.Run.Id))
		if err := reports.WriteEvidenceXlsx(c.Writer, pack); err != nil {
			config.LogError(config.GetLogger(), "server.go", "evidenceExportHandler", "writing workbook", report.Run.Id, err)
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	config.LoadEnv()

	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// The embedded check pack must parse; fail at startup, not per request.
	_, err := checks.UC1Pack()
	utils.ErrorPanic(err)

	// Handle SIGTERM for graceful drain on managed platforms.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())

	corsConfig := cors.DefaultConfig()
	// In production, require explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated). In non-production, allow all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-API-Key", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware())
	api.GET("/registry/fields", registryFieldsHandler())
	api.GET("/registry/controls", controlsHandler())
	api.GET("/checkpack", checkPackHandler())
	api.POST("/coverage", coverageHandler())
	api.POST("/check-runs", checkRunHandler())
	api.POST("/evidence/export", evidenceExportHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{
		"port": port,
	}).Info("validation API listening")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

// customErrorLogger logs only requests that accumulated gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
