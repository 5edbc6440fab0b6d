package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/yungbote/academicworld-backend/internal/handlers"
)

type RouterConfig struct {
  CORSOrigins        []string
  EnableTracing      bool
  DashboardHandler   *handlers.DashboardHandler
  UniversityHandler  *handlers.UniversityHandler
  PublicationHandler *handlers.PublicationHandler
  SSEHandler         *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  if cfg.EnableTracing {
    router.Use(otelgin.Middleware("academicworld-backend"))
  }

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.CORSOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    // Dashboard bootstrap + reactive graph
    api.GET("/dashboard/bootstrap", cfg.DashboardHandler.Bootstrap)
    api.GET("/dashboard/snapshot", cfg.DashboardHandler.Snapshot)
    api.GET("/dashboard/widgets/:name", cfg.DashboardHandler.Widget)
    api.POST("/dashboard/keyword", cfg.DashboardHandler.SetKeyword)
    api.POST("/dashboard/keyword-filter", cfg.DashboardHandler.SetKeywordFilter)
    api.POST("/dashboard/filters", cfg.DashboardHandler.SetFilters)
    api.POST("/dashboard/select-university", cfg.DashboardHandler.SelectUniversity)
    api.POST("/dashboard/select-faculty", cfg.DashboardHandler.SelectFaculty)
    api.POST("/dashboard/select-publication", cfg.DashboardHandler.SelectPublication)

    // Direct query widgets
    api.GET("/rankings/citations", cfg.DashboardHandler.CitationRanking)
    api.GET("/rankings/keyword-scores", cfg.DashboardHandler.KeywordScores)
    api.GET("/rankings/krc", cfg.DashboardHandler.KeywordRelevantCitation)
    api.GET("/publications/over-time", cfg.DashboardHandler.PublicationsOverTime)
    api.GET("/publications/year-range", cfg.DashboardHandler.PublicationYearRange)
    api.GET("/keywords/suggestions", cfg.DashboardHandler.KeywordSuggestions)

    // Universities + faculty
    api.GET("/universities", cfg.UniversityHandler.List)
    api.POST("/universities", cfg.UniversityHandler.Add)
    api.DELETE("/universities/:name", cfg.UniversityHandler.Delete)
    api.GET("/universities/:name/faculty", cfg.UniversityHandler.Faculty)

    // Publications
    api.GET("/faculty/:id/publications", cfg.PublicationHandler.ByFaculty)
    api.GET("/publications/:id", cfg.PublicationHandler.Get)
    api.POST("/publications", cfg.PublicationHandler.Add)
    api.PATCH("/publications/:id", cfg.PublicationHandler.Update)
    api.DELETE("/publications/:id/link", cfg.PublicationHandler.DeleteLink)

    // SSE
    api.GET("/sse/stream", cfg.SSEHandler.Stream)
    api.POST("/sse/subscribe", cfg.SSEHandler.Subscribe)
    api.POST("/sse/unsubscribe", cfg.SSEHandler.Unsubscribe)
  }

  return router
}
