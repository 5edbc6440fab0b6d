package db

import (
  "context"
  "fmt"
  "time"

  "go.mongodb.org/mongo-driver/mongo"
  "go.mongodb.org/mongo-driver/mongo/options"
  "go.mongodb.org/mongo-driver/mongo/readpref"

  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/utils"
)

type MongoService struct {
  client   *mongo.Client
  database *mongo.Database
  log      *logger.Logger
}

func NewMongoService(log *logger.Logger) (*MongoService, error) {
  serviceLog := log.With("service", "MongoService")

  log.Info("Loading environment variables...")
  mongoHost := utils.GetEnv("MONGO_HOST", "localhost", log)
  mongoPort := utils.GetEnv("MONGO_PORT", "27017", log)
  mongoName := utils.GetEnv("MONGO_NAME", "academicworld", log)
  timeoutSec := utils.GetEnvAsInt("MONGO_TIMEOUT_SECONDS", 10, log)

  uri := fmt.Sprintf("mongodb://%s:%s/", mongoHost, mongoPort)

  ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
  defer cancel()

  log.Info("Connecting to MongoDB...")
  client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
  if err != nil {
    log.Error("Failed to connect to MongoDB", "error", err)
    return nil, fmt.Errorf("Failed to connect to MongoDB: %w", err)
  }
  if err := client.Ping(ctx, readpref.Primary()); err != nil {
    _ = client.Disconnect(context.Background())
    log.Error("Failed to ping MongoDB", "error", err)
    return nil, fmt.Errorf("Failed to ping MongoDB: %w", err)
  }

  return &MongoService{
    client:   client,
    database: client.Database(mongoName),
    log:      serviceLog,
  }, nil
}

// Faculty documents embed the university affiliation and a publication-id
// list; Publications carries (id, year). An index on publications.id backs
// the $lookup join.
func (s *MongoService) Faculty() *mongo.Collection {
  return s.database.Collection("faculty")
}

func (s *MongoService) Publications() *mongo.Collection {
  return s.database.Collection("publications")
}

func (s *MongoService) Close(ctx context.Context) error {
  if s == nil || s.client == nil {
    return nil
  }
  if ctx == nil {
    ctx = context.Background()
  }
  return s.client.Disconnect(ctx)
}
