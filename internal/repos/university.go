package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/types"
)

type UniversityRepo interface {
  NextID(ctx context.Context, tx *gorm.DB) (int64, error)
  Create(ctx context.Context, tx *gorm.DB, university *types.University) error
  DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error)
  ListNames(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type universityRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUniversityRepo(db *gorm.DB, baseLog *logger.Logger) UniversityRepo {
  repoLog := baseLog.With("repo", "UniversityRepo")
  return &universityRepo{db: db, log: repoLog}
}

// NextID preserves the dataset's sequential small-integer ids. Computed
// inside the caller's transaction; racy under concurrent writers, which this
// single-session tool does not have.
func (ur *universityRepo) NextID(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  var nextID int64
  if err := transaction.WithContext(ctx).
    Raw(`SELECT COALESCE(MAX(id), 0) + 1 FROM university`).
    Scan(&nextID).Error; err != nil {
    return 0, err
  }
  return nextID, nil
}

func (ur *universityRepo) Create(ctx context.Context, tx *gorm.DB, university *types.University) error {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  if university == nil {
    return nil
  }
  return transaction.WithContext(ctx).Create(university).Error
}

func (ur *universityRepo) DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  result := transaction.WithContext(ctx).
    Where("name = ?", name).
    Delete(&types.University{})
  if result.Error != nil {
    return 0, result.Error
  }
  return result.RowsAffected, nil
}

func (ur *universityRepo) ListNames(ctx context.Context, tx *gorm.DB) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = ur.db
  }

  var names []string
  if err := transaction.WithContext(ctx).
    Model(&types.University{}).
    Distinct("name").
    Order("name").
    Pluck("name", &names).Error; err != nil {
    return nil, err
  }
  return names, nil
}
