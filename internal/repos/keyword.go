package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/yungbote/academicworld-backend/internal/logger"
)

type KeywordRepo interface {
  Validate(ctx context.Context, tx *gorm.DB, lowercased []string) ([]string, error)
  ListLinked(ctx context.Context, tx *gorm.DB) ([]string, error)
  SuggestPrefix(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error)
  SuggestContains(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error)
}

type keywordRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
  repoLog := baseLog.With("repo", "KeywordRepo")
  return &keywordRepo{db: db, log: repoLog}
}

// Validate returns the stored names of the keywords whose lowercased form
// appears in the input. Callers lowercase beforehand.
func (kr *keywordRepo) Validate(ctx context.Context, tx *gorm.DB, lowercased []string) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }

  if len(lowercased) == 0 {
    return []string{}, nil
  }
  var names []string
  if err := transaction.WithContext(ctx).
    Raw(`SELECT name FROM keyword WHERE LOWER(name) IN ?`, lowercased).
    Scan(&names).Error; err != nil {
    return nil, err
  }
  return names, nil
}

// ListLinked returns distinct lowercased keyword names that are attached to
// at least one faculty member; orphan keywords are excluded.
func (kr *keywordRepo) ListLinked(ctx context.Context, tx *gorm.DB) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }

  var names []string
  if err := transaction.WithContext(ctx).
    Raw(`SELECT DISTINCT LOWER(k.name)
         FROM keyword k
         JOIN faculty_keyword fk ON k.id = fk.keyword_id
         JOIN faculty f ON fk.faculty_id = f.id
         JOIN university u ON f.university_id = u.id
         ORDER BY LOWER(k.name)`).
    Scan(&names).Error; err != nil {
    return nil, err
  }
  return names, nil
}

func (kr *keywordRepo) SuggestPrefix(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }

  var names []string
  if err := transaction.WithContext(ctx).
    Raw(`SELECT name FROM keyword
         WHERE LOWER(name) LIKE ?
         ORDER BY name
         LIMIT ?`, term+"%", limit).
    Scan(&names).Error; err != nil {
    return nil, err
  }
  return names, nil
}

func (kr *keywordRepo) SuggestContains(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = kr.db
  }

  var names []string
  if err := transaction.WithContext(ctx).
    Raw(`SELECT name FROM keyword
         WHERE LOWER(name) LIKE ? AND LOWER(name) NOT LIKE ?
         ORDER BY name
         LIMIT ?`, "%"+term+"%", term+"%", limit).
    Scan(&names).Error; err != nil {
    return nil, err
  }
  return names, nil
}
