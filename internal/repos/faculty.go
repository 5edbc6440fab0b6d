package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/types"
)

type FacultyRepo interface {
  ListByUniversityName(ctx context.Context, tx *gorm.DB, universityName string) ([]types.FacultyOption, error)
  Exists(ctx context.Context, tx *gorm.DB, facultyID int64) (bool, error)
}

type facultyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewFacultyRepo(db *gorm.DB, baseLog *logger.Logger) FacultyRepo {
  repoLog := baseLog.With("repo", "FacultyRepo")
  return &facultyRepo{db: db, log: repoLog}
}

func (fr *facultyRepo) ListByUniversityName(ctx context.Context, tx *gorm.DB, universityName string) ([]types.FacultyOption, error) {
  transaction := tx
  if transaction == nil {
    transaction = fr.db
  }

  var results []types.FacultyOption
  if err := transaction.WithContext(ctx).
    Raw(`SELECT f.name, f.id
         FROM faculty f
         JOIN university u ON u.id = f.university_id
         WHERE u.name = ?`, universityName).
    Scan(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (fr *facultyRepo) Exists(ctx context.Context, tx *gorm.DB, facultyID int64) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = fr.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Faculty{}).
    Where("id = ?", facultyID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}
