package db

import (
  "fmt"
  "gorm.io/driver/mysql"
  "gorm.io/gorm"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/utils"
)

type MySQLService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMySQLService(log *logger.Logger) (*MySQLService, error) {
  serviceLog := log.With("service", "MySQLService")

  log.Info("Loading environment variables...")
  mysqlHost := utils.GetEnv("MYSQL_HOST", "localhost", log)
  mysqlPort := utils.GetEnv("MYSQL_PORT", "3306", log)
  mysqlUser := utils.GetEnv("MYSQL_USER", "root", log)
  mysqlPassword := utils.GetEnv("MYSQL_PASSWORD", "", log)
  mysqlName := utils.GetEnv("MYSQL_NAME", "academicworld", log)
  log.Debug("Environment variables loaded")

  dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", mysqlUser, mysqlPassword, mysqlHost, mysqlPort, mysqlName)

  log.Info("Connecting to MySQL...")
  gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to MySQL", "error", err)
    return nil, fmt.Errorf("Failed to connect to MySQL: %w", err)
  }

  return &MySQLService{db: gormDB, log: serviceLog}, nil
}

// EnsureSchema creates the supporting indexes, the unique university name
// constraint, and the trigger that removes a publication row once its last
// faculty link is deleted. The base tables are assumed to exist already
// (academicworld dataset import); everything here is idempotent, so a rerun
// on an initialized database is harmless.
func (s *MySQLService) EnsureSchema() error {
  s.log.Info("Ensuring MySQL indexes and triggers...")

  indexes := []string{
    `CREATE INDEX idx_faculty_keyword_faculty_id ON faculty_keyword(faculty_id)`,
    `CREATE INDEX idx_faculty_keyword_keyword_id ON faculty_keyword(keyword_id)`,
    `CREATE INDEX idx_faculty_university_id ON faculty(university_id)`,
    `CREATE INDEX idx_keyword_name ON keyword(name)`,
  }
  for _, stmt := range indexes {
    if err := s.db.Exec(stmt).Error; err != nil {
      // MySQL has no CREATE INDEX IF NOT EXISTS; a duplicate-key-name error
      // on rerun is expected.
      s.log.Debug("Index creation skipped", "error", err)
    }
  }

  if err := s.db.Exec(`ALTER TABLE university MODIFY name VARCHAR(255) NOT NULL UNIQUE`).Error; err != nil {
    s.log.Debug("University name constraint already in place", "error", err)
  }

  if err := s.db.Exec(`DROP TRIGGER IF EXISTS delete_publication_after_last_link`).Error; err != nil {
    return fmt.Errorf("drop orphan-publication trigger: %w", err)
  }
  trigger := `
    CREATE TRIGGER delete_publication_after_last_link
    AFTER DELETE ON faculty_publication
    FOR EACH ROW
    BEGIN
      DELETE FROM publication WHERE id = OLD.publication_id;
    END
  `
  if err := s.db.Exec(trigger).Error; err != nil {
    return fmt.Errorf("create orphan-publication trigger: %w", err)
  }
  s.log.Info("MySQL schema ensured")
  return nil
}

func (s *MySQLService) DB() *gorm.DB {
  return s.db
}
