package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/yungbote/academicworld-backend/internal/app"
  "github.com/yungbote/academicworld-backend/internal/db"
  "github.com/yungbote/academicworld-backend/internal/handlers"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/observability"
  "github.com/yungbote/academicworld-backend/internal/reactive"
  "github.com/yungbote/academicworld-backend/internal/repos"
  "github.com/yungbote/academicworld-backend/internal/server"
  "github.com/yungbote/academicworld-backend/internal/services"
  "github.com/yungbote/academicworld-backend/internal/sse"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Config
  cfg, err := app.LoadConfig(log)
  if err != nil {
    log.Error("Could not load config", "error", err)
    os.Exit(1)
  }

  // Tracing
  if cfg.EnableTracing {
    shutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
      ServiceName: "academicworld-backend",
      Environment: os.Getenv("DEPLOY_ENV"),
      Version:     os.Getenv("SERVICE_VERSION"),
    })
    if shutdown != nil {
      defer func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = shutdown(ctx)
      }()
    }
  }

  // MySQL
  mysqlService, err := db.NewMySQLService(log)
  if err != nil {
    log.Error("MySQL init failed", "error", err)
    os.Exit(1)
  }
  if cfg.EnsureSchema {
    if err := mysqlService.EnsureSchema(); err != nil {
      log.Warn("MySQL schema ensure failed", "error", err)
    }
  }
  theDB := mysqlService.DB()

  // MongoDB
  mongoService, err := db.NewMongoService(log)
  if err != nil {
    log.Error("MongoDB init failed", "error", err)
    os.Exit(1)
  }
  defer func() {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = mongoService.Close(ctx)
  }()

  // Neo4j
  neo4jService, err := db.NewNeo4jService(log)
  if err != nil {
    log.Error("Neo4j init failed", "error", err)
    os.Exit(1)
  }
  defer func() {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = neo4jService.Close(ctx)
  }()

  // Repos
  log.Info("Setting up Repos from main...")
  universityRepo := repos.NewUniversityRepo(theDB, log)
  facultyRepo := repos.NewFacultyRepo(theDB, log)
  publicationRepo := repos.NewPublicationRepo(theDB, log)
  keywordRepo := repos.NewKeywordRepo(theDB, log)

  // Services
  log.Info("Setting up Services from main...")
  relationalService := services.NewRelationalService(theDB, log, universityRepo, facultyRepo, publicationRepo, keywordRepo)
  documentService := services.NewDocumentService(mongoService, log)
  graphService := services.NewGraphService(neo4jService, log)

  // Reactive dashboard
  log.Info("Setting up reactive dashboard from main...")
  dashboard, err := reactive.NewDashboard(relationalService, documentService, graphService, log)
  if err != nil {
    log.Error("Could not build dashboard graph", "error", err)
    os.Exit(1)
  }

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)

  // Refresh bus: with redis configured every replica sees every counter
  // bump; without it refresh events stay instance-local.
  refreshBus, err := services.NewRedisRefreshBus(log)
  if err != nil {
    log.Warn("Redis refresh bus unavailable; refresh events stay local", "error", err)
    refreshBus = nil
  }
  if refreshBus != nil {
    if err := refreshBus.StartForwarder(context.Background(), func(m sse.SSEMessage) {
      sseHub.Broadcast(m)
    }); err != nil {
      log.Warn("Redis forwarder failed to start; refresh events stay local", "error", err)
      refreshBus = nil
    }
  }
  dashboard.Engine().OnRefresh(func(counter string, value int64, seq uint64) {
    msg := sse.SSEMessage{
      Channel: counter,
      Event:   sse.SSEEventRefreshTriggered,
      Seq:     seq,
      Data:    value,
    }
    if refreshBus != nil {
      ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
      defer cancel()
      if err := refreshBus.Publish(ctx, msg); err != nil {
        log.Warn("Refresh publish failed; broadcasting locally", "error", err)
        sseHub.Broadcast(msg)
      }
      return
    }
    sseHub.Broadcast(msg)
  })

  if err := dashboard.Start(context.Background()); err != nil {
    log.Warn("Dashboard prime failed", "error", err)
  }

  // Handlers
  log.Info("Setting up handlers from main...")
  dashboardHandler := handlers.NewDashboardHandler(dashboard, relationalService, documentService, graphService)
  universityHandler := handlers.NewUniversityHandler(dashboard, relationalService)
  publicationHandler := handlers.NewPublicationHandler(dashboard, relationalService)
  sseHandler := handlers.NewSSEHandler(log, sseHub)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    CORSOrigins:        cfg.CORSOrigins,
    EnableTracing:      cfg.EnableTracing,
    DashboardHandler:   dashboardHandler,
    UniversityHandler:  universityHandler,
    PublicationHandler: publicationHandler,
    SSEHandler:         sseHandler,
  })

  fmt.Printf("Server listening on :%s\n", cfg.Port)
  if err := router.Run(":" + cfg.Port); err != nil {
    log.Warn("Server failed", "error", err)
  }
  if refreshBus != nil {
    _ = refreshBus.Close()
  }
}
