package services

import (
  "context"
  "fmt"
  "strings"
  "sync"

  "gorm.io/gorm"

  "github.com/yungbote/academicworld-backend/internal/apperr"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/normalization"
  "github.com/yungbote/academicworld-backend/internal/repos"
  "github.com/yungbote/academicworld-backend/internal/types"
)

const suggestionLimit = 10

type RelationalService interface {
  CitationRanking(ctx context.Context, universityName string) ([]types.CitationRank, error)
  KeywordScoreRanking(ctx context.Context, keywords []string) (types.KeywordScoreResult, error)
  KeywordSuggestions(ctx context.Context, prefix string) ([]string, error)
  AllKeywords(ctx context.Context) ([]string, error)
  AllUniversities(ctx context.Context) ([]string, error)
  FacultyByUniversity(ctx context.Context, universityName string) ([]types.FacultyOption, error)
  PublicationsByFaculty(ctx context.Context, facultyID int64) ([]types.PublicationOption, error)

  AddUniversity(ctx context.Context, name string, photoURL *string) (int64, error)
  DeleteUniversity(ctx context.Context, name string) error
  AddPublication(ctx context.Context, facultyID int64, fields types.PublicationPatch) (int64, error)
  UpdatePublication(ctx context.Context, publicationID int64, patch types.PublicationPatch) error
  DeletePublicationLink(ctx context.Context, publicationID int64) error
  GetPublication(ctx context.Context, publicationID int64) (*types.Publication, error)
}

type relationalService struct {
  db              *gorm.DB
  log             *logger.Logger
  universityRepo  repos.UniversityRepo
  facultyRepo     repos.FacultyRepo
  publicationRepo repos.PublicationRepo
  keywordRepo     repos.KeywordRepo

  viewMu      sync.Mutex
  viewEnsured bool
}

func NewRelationalService(
  db *gorm.DB,
  baseLog *logger.Logger,
  universityRepo repos.UniversityRepo,
  facultyRepo repos.FacultyRepo,
  publicationRepo repos.PublicationRepo,
  keywordRepo repos.KeywordRepo,
) RelationalService {
  serviceLog := baseLog.With("service", "RelationalService")
  return &relationalService{
    db:              db,
    log:             serviceLog,
    universityRepo:  universityRepo,
    facultyRepo:     facultyRepo,
    publicationRepo: publicationRepo,
    keywordRepo:     keywordRepo,
  }
}

// CitationRanking returns the top 10 faculty of a university by summed
// publication citations, descending. Order among equal totals is
// unspecified (store default).
func (rs *relationalService) CitationRanking(ctx context.Context, universityName string) ([]types.CitationRank, error) {
  if strings.TrimSpace(universityName) == "" {
    return nil, apperr.Newf(apperr.CodeValidation, "university name required")
  }

  var rows []types.CitationRank
  if err := rs.db.WithContext(ctx).
    Raw(`SELECT f.name AS faculty, SUM(p.num_citations) AS total_citations
         FROM faculty f
         JOIN university u ON u.id = f.university_id
         JOIN faculty_publication fp ON fp.faculty_id = f.id
         JOIN publication p ON p.id = fp.publication_id
         WHERE u.name = ?
         GROUP BY f.name
         ORDER BY total_citations DESC
         LIMIT 10`, universityName).
    Scan(&rows).Error; err != nil {
    return nil, fmt.Errorf("citation ranking: %w", err)
  }
  return rows, nil
}

// KeywordScoreRanking sums per-university faculty keyword scores from the
// university_keyword_score view: top 10 descending, over all keywords when
// the filter is empty. A filter that matches no existing keyword yields
// KeywordScoreNoMatch, which is distinct from an empty data set.
func (rs *relationalService) KeywordScoreRanking(ctx context.Context, keywords []string) (types.KeywordScoreResult, error) {
  normalized := normalization.NormalizeKeywords(keywords)

  if len(keywords) > 0 && len(normalized) == 0 {
    return types.KeywordScoreResult{}, apperr.Newf(apperr.CodeValidation, "keyword filter contains only blank entries")
  }

  if len(normalized) > 0 {
    valid, err := rs.keywordRepo.Validate(ctx, nil, normalized)
    if err != nil {
      return types.KeywordScoreResult{}, fmt.Errorf("validate keywords: %w", err)
    }
    if len(valid) == 0 {
      return types.KeywordScoreResult{Kind: types.KeywordScoreNoMatch}, nil
    }
  }

  if err := rs.ensureScoreView(ctx); err != nil {
    return types.KeywordScoreResult{}, err
  }

  var rows []types.UniversityScore
  query := rs.db.WithContext(ctx)
  if len(normalized) > 0 {
    err := query.Raw(`SELECT university_name AS university, total_keyword_score AS total_score
                      FROM university_keyword_score
                      WHERE LOWER(keyword_name) IN ?
                      ORDER BY total_keyword_score DESC
                      LIMIT 10`, normalized).
      Scan(&rows).Error
    if err != nil {
      return types.KeywordScoreResult{}, fmt.Errorf("keyword score ranking: %w", err)
    }
  } else {
    err := query.Raw(`SELECT university_name AS university, total_keyword_score AS total_score
                      FROM university_keyword_score
                      ORDER BY total_keyword_score DESC
                      LIMIT 10`).
      Scan(&rows).Error
    if err != nil {
      return types.KeywordScoreResult{}, fmt.Errorf("keyword score ranking: %w", err)
    }
  }

  if len(rows) == 0 {
    return types.KeywordScoreResult{Kind: types.KeywordScoreEmpty}, nil
  }
  return types.KeywordScoreResult{Kind: types.KeywordScoreRows, Rows: rows}, nil
}

func (rs *relationalService) ensureScoreView(ctx context.Context) error {
  rs.viewMu.Lock()
  defer rs.viewMu.Unlock()
  if rs.viewEnsured {
    return nil
  }
  err := rs.db.WithContext(ctx).Exec(`
    CREATE OR REPLACE VIEW university_keyword_score AS
    SELECT u.id AS university_id,
           u.name AS university_name,
           k.id AS keyword_id,
           k.name AS keyword_name,
           SUM(fk.score) AS total_keyword_score
    FROM faculty f
    JOIN faculty_keyword fk ON f.id = fk.faculty_id
    JOIN keyword k ON fk.keyword_id = k.id
    JOIN university u ON f.university_id = u.id
    GROUP BY u.id, u.name, k.id, k.name`).Error
  if err != nil {
    return fmt.Errorf("ensure university_keyword_score view: %w", err)
  }
  rs.viewEnsured = true
  return nil
}

// KeywordSuggestions ranks up to 10 keywords starting with the prefix ahead
// of up to 10 that merely contain it, each tier alphabetical, no duplicates.
func (rs *relationalService) KeywordSuggestions(ctx context.Context, prefix string) ([]string, error) {
  term := normalization.ParseInputString(prefix)
  if term == "" {
    return []string{}, nil
  }

  prefixMatches, err := rs.keywordRepo.SuggestPrefix(ctx, nil, term, suggestionLimit)
  if err != nil {
    return nil, fmt.Errorf("keyword prefix suggestions: %w", err)
  }
  containsMatches, err := rs.keywordRepo.SuggestContains(ctx, nil, term, suggestionLimit)
  if err != nil {
    return nil, fmt.Errorf("keyword contains suggestions: %w", err)
  }
  return mergeSuggestions(prefixMatches, containsMatches), nil
}

// mergeSuggestions keeps prefix-tier order ahead of contains-tier order and
// drops case-insensitive duplicates across the tiers.
func mergeSuggestions(prefixMatches, containsMatches []string) []string {
  out := make([]string, 0, len(prefixMatches)+len(containsMatches))
  seen := make(map[string]bool, len(prefixMatches)+len(containsMatches))
  for _, tier := range [][]string{prefixMatches, containsMatches} {
    for _, name := range tier {
      key := strings.ToLower(name)
      if seen[key] {
        continue
      }
      seen[key] = true
      out = append(out, name)
    }
  }
  return out
}

func (rs *relationalService) AllKeywords(ctx context.Context) ([]string, error) {
  names, err := rs.keywordRepo.ListLinked(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("list keywords: %w", err)
  }
  return names, nil
}

func (rs *relationalService) AllUniversities(ctx context.Context) ([]string, error) {
  names, err := rs.universityRepo.ListNames(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("list universities: %w", err)
  }
  return names, nil
}

func (rs *relationalService) FacultyByUniversity(ctx context.Context, universityName string) ([]types.FacultyOption, error) {
  if strings.TrimSpace(universityName) == "" {
    return []types.FacultyOption{}, nil
  }
  options, err := rs.facultyRepo.ListByUniversityName(ctx, nil, universityName)
  if err != nil {
    return nil, fmt.Errorf("faculty by university: %w", err)
  }
  return options, nil
}

func (rs *relationalService) PublicationsByFaculty(ctx context.Context, facultyID int64) ([]types.PublicationOption, error) {
  if facultyID <= 0 {
    return []types.PublicationOption{}, nil
  }
  options, err := rs.publicationRepo.ListByFaculty(ctx, nil, facultyID)
  if err != nil {
    return nil, fmt.Errorf("publications by faculty: %w", err)
  }
  return options, nil
}

func (rs *relationalService) AddUniversity(ctx context.Context, name string, photoURL *string) (int64, error) {
  trimmed := strings.TrimSpace(name)
  if trimmed == "" {
    return 0, apperr.Newf(apperr.CodeValidation, "university name required")
  }

  var newID int64
  err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    nextID, err := rs.universityRepo.NextID(ctx, tx)
    if err != nil {
      return fmt.Errorf("next university id: %w", err)
    }
    university := &types.University{ID: nextID, Name: trimmed, PhotoURL: photoURL}
    if err := rs.universityRepo.Create(ctx, tx, university); err != nil {
      return fmt.Errorf("insert university: %w", err)
    }
    newID = nextID
    return nil
  })
  if err != nil {
    return 0, apperr.ClassifyMySQL(err)
  }
  rs.log.Info("University added", "name", trimmed, "id", newID)
  return newID, nil
}

// DeleteUniversity fails with a referential-integrity error when faculty
// rows still reference the university; there is deliberately no cascade.
func (rs *relationalService) DeleteUniversity(ctx context.Context, name string) error {
  trimmed := strings.TrimSpace(name)
  if trimmed == "" {
    return apperr.Newf(apperr.CodeValidation, "university name required")
  }

  err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    affected, err := rs.universityRepo.DeleteByName(ctx, tx, trimmed)
    if err != nil {
      return fmt.Errorf("delete university: %w", err)
    }
    if affected == 0 {
      return apperr.Newf(apperr.CodeNotFound, "university %q not found", trimmed)
    }
    return nil
  })
  if err != nil {
    return apperr.ClassifyMySQL(err)
  }
  rs.log.Info("University deleted", "name", trimmed)
  return nil
}

// AddPublication inserts the publication (citations start at zero) and its
// single faculty link in one transaction.
func (rs *relationalService) AddPublication(ctx context.Context, facultyID int64, fields types.PublicationPatch) (int64, error) {
  if facultyID <= 0 {
    return 0, apperr.Newf(apperr.CodeValidation, "faculty id required")
  }
  if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
    return 0, apperr.Newf(apperr.CodeValidation, "publication title required")
  }

  var newID int64
  err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    exists, err := rs.facultyRepo.Exists(ctx, tx, facultyID)
    if err != nil {
      return fmt.Errorf("check faculty: %w", err)
    }
    if !exists {
      return apperr.Newf(apperr.CodeNotFound, "faculty %d not found", facultyID)
    }

    nextID, err := rs.publicationRepo.NextID(ctx, tx)
    if err != nil {
      return fmt.Errorf("next publication id: %w", err)
    }
    publication := &types.Publication{
      ID:    nextID,
      Title: strings.TrimSpace(*fields.Title),
      Venue: fields.Venue,
      Year:  fields.Year,
    }
    if err := rs.publicationRepo.Create(ctx, tx, publication); err != nil {
      return fmt.Errorf("insert publication: %w", err)
    }
    if err := rs.publicationRepo.Link(ctx, tx, facultyID, nextID); err != nil {
      return fmt.Errorf("link publication: %w", err)
    }
    newID = nextID
    return nil
  })
  if err != nil {
    return 0, apperr.ClassifyMySQL(err)
  }
  rs.log.Info("Publication added", "faculty_id", facultyID, "id", newID)
  return newID, nil
}

func (rs *relationalService) UpdatePublication(ctx context.Context, publicationID int64, patch types.PublicationPatch) error {
  if publicationID <= 0 {
    return apperr.Newf(apperr.CodeValidation, "publication id required")
  }
  if patch.IsEmpty() {
    return nil
  }

  err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := rs.publicationRepo.GetByID(ctx, tx, publicationID); err != nil {
      return fmt.Errorf("load publication: %w", err)
    }
    if err := rs.publicationRepo.UpdateFields(ctx, tx, publicationID, patch); err != nil {
      return fmt.Errorf("update publication: %w", err)
    }
    return nil
  })
  if err != nil {
    return apperr.ClassifyMySQL(err)
  }
  rs.log.Info("Publication updated", "id", publicationID)
  return nil
}

// DeletePublicationLink removes the link rows only; the store trigger then
// removes the now-orphaned publication row.
func (rs *relationalService) DeletePublicationLink(ctx context.Context, publicationID int64) error {
  if publicationID <= 0 {
    return apperr.Newf(apperr.CodeValidation, "publication id required")
  }

  err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    affected, err := rs.publicationRepo.DeleteLinks(ctx, tx, publicationID)
    if err != nil {
      return fmt.Errorf("delete publication links: %w", err)
    }
    if affected == 0 {
      return apperr.Newf(apperr.CodeNotFound, "publication %d has no links", publicationID)
    }
    return nil
  })
  if err != nil {
    return apperr.ClassifyMySQL(err)
  }
  rs.log.Info("Publication link deleted", "id", publicationID)
  return nil
}

func (rs *relationalService) GetPublication(ctx context.Context, publicationID int64) (*types.Publication, error) {
  if publicationID <= 0 {
    return nil, apperr.Newf(apperr.CodeValidation, "publication id required")
  }
  publication, err := rs.publicationRepo.GetByID(ctx, nil, publicationID)
  if err != nil {
    return nil, apperr.ClassifyMySQL(err)
  }
  return publication, nil
}
