package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/types"
)

type PublicationRepo interface {
  NextID(ctx context.Context, tx *gorm.DB) (int64, error)
  Create(ctx context.Context, tx *gorm.DB, publication *types.Publication) error
  Link(ctx context.Context, tx *gorm.DB, facultyID, publicationID int64) error
  UpdateFields(ctx context.Context, tx *gorm.DB, publicationID int64, patch types.PublicationPatch) error
  DeleteLinks(ctx context.Context, tx *gorm.DB, publicationID int64) (int64, error)
  GetByID(ctx context.Context, tx *gorm.DB, publicationID int64) (*types.Publication, error)
  ListByFaculty(ctx context.Context, tx *gorm.DB, facultyID int64) ([]types.PublicationOption, error)
}

type publicationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPublicationRepo(db *gorm.DB, baseLog *logger.Logger) PublicationRepo {
  repoLog := baseLog.With("repo", "PublicationRepo")
  return &publicationRepo{db: db, log: repoLog}
}

// NextID mirrors the university id scheme: max+1 inside the caller's
// transaction.
func (pr *publicationRepo) NextID(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var nextID int64
  if err := transaction.WithContext(ctx).
    Raw(`SELECT COALESCE(MAX(id), 0) + 1 FROM publication`).
    Scan(&nextID).Error; err != nil {
    return 0, err
  }
  return nextID, nil
}

func (pr *publicationRepo) Create(ctx context.Context, tx *gorm.DB, publication *types.Publication) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if publication == nil {
    return nil
  }
  return transaction.WithContext(ctx).Create(publication).Error
}

func (pr *publicationRepo) Link(ctx context.Context, tx *gorm.DB, facultyID, publicationID int64) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  link := types.FacultyPublication{FacultyID: facultyID, PublicationID: publicationID}
  return transaction.WithContext(ctx).Create(&link).Error
}

func (pr *publicationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, publicationID int64, patch types.PublicationPatch) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  updates := patch.Columns()
  if len(updates) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Publication{}).
    Where("id = ?", publicationID).
    Updates(updates).Error
}

// DeleteLinks removes the faculty_publication rows only; the store-side
// trigger removes the publication row itself once its last link is gone.
func (pr *publicationRepo) DeleteLinks(ctx context.Context, tx *gorm.DB, publicationID int64) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  result := transaction.WithContext(ctx).
    Where("publication_id = ?", publicationID).
    Delete(&types.FacultyPublication{})
  if result.Error != nil {
    return 0, result.Error
  }
  return result.RowsAffected, nil
}

func (pr *publicationRepo) GetByID(ctx context.Context, tx *gorm.DB, publicationID int64) (*types.Publication, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var publication types.Publication
  if err := transaction.WithContext(ctx).
    Where("id = ?", publicationID).
    First(&publication).Error; err != nil {
    return nil, err
  }
  return &publication, nil
}

func (pr *publicationRepo) ListByFaculty(ctx context.Context, tx *gorm.DB, facultyID int64) ([]types.PublicationOption, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []types.PublicationOption
  if err := transaction.WithContext(ctx).
    Raw(`SELECT p.title, p.id
         FROM faculty f
         JOIN faculty_publication fp ON fp.faculty_id = f.id
         JOIN publication p ON p.id = fp.publication_id
         WHERE f.id = ?`, facultyID).
    Scan(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
