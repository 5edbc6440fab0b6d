package services

import (
  "context"
  "fmt"
  "sort"
  "strings"

  "go.mongodb.org/mongo-driver/bson"
  "go.mongodb.org/mongo-driver/mongo"
  "go.mongodb.org/mongo-driver/mongo/options"

  "github.com/yungbote/academicworld-backend/internal/apperr"
  "github.com/yungbote/academicworld-backend/internal/db"
  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/types"
)

type DocumentService interface {
  PublicationsOverTime(ctx context.Context, universities []string, yearRange *types.YearRange) ([]types.PublicationCount, error)
  AllUniversities(ctx context.Context) ([]string, error)
  PublicationYearRange(ctx context.Context) (types.YearRange, error)
}

type documentService struct {
  mongo *db.MongoService
  log   *logger.Logger
}

func NewDocumentService(mongoService *db.MongoService, baseLog *logger.Logger) DocumentService {
  serviceLog := baseLog.With("service", "DocumentService")
  return &documentService{mongo: mongoService, log: serviceLog}
}

// PublicationsOverTime counts faculty-publication associations grouped by
// (university, year), sorted ascending on both. Filters are optional; bad
// filters fail before any store round-trip.
func (ds *documentService) PublicationsOverTime(ctx context.Context, universities []string, yearRange *types.YearRange) ([]types.PublicationCount, error) {
  trimmed, err := validatePublicationFilters(universities, yearRange)
  if err != nil {
    return nil, err
  }

  pipeline := buildPublicationsPipeline(trimmed, yearRange)

  // Strength-2 collation makes the university name match case-insensitive,
  // the cross-store join boundary rule.
  opts := options.Aggregate().SetCollation(&options.Collation{Locale: "en", Strength: 2})
  cursor, err := ds.mongo.Faculty().Aggregate(ctx, pipeline, opts)
  if err != nil {
    return nil, fmt.Errorf("publications over time aggregate: %w", err)
  }
  defer cursor.Close(ctx)

  var raw []struct {
    ID struct {
      University string `bson:"university"`
      Year       int32  `bson:"year"`
    } `bson:"_id"`
    Count int64 `bson:"university_publications"`
  }
  if err := cursor.All(ctx, &raw); err != nil {
    return nil, fmt.Errorf("publications over time decode: %w", err)
  }

  counts := make([]types.PublicationCount, 0, len(raw))
  for _, r := range raw {
    counts = append(counts, types.PublicationCount{
      University: r.ID.University,
      Year:       int(r.ID.Year),
      Count:      r.Count,
    })
  }
  return counts, nil
}

func validatePublicationFilters(universities []string, yearRange *types.YearRange) ([]string, error) {
  trimmed := make([]string, 0, len(universities))
  for _, u := range universities {
    t := strings.TrimSpace(u)
    if t == "" {
      return nil, apperr.Newf(apperr.CodeValidation, "university filter contains a blank name")
    }
    trimmed = append(trimmed, t)
  }
  if yearRange != nil {
    if yearRange.Min == nil || yearRange.Max == nil {
      return nil, apperr.Newf(apperr.CodeValidation, "year range requires both min and max")
    }
    if *yearRange.Min > *yearRange.Max {
      return nil, apperr.Newf(apperr.CodeValidation, "year range min %d exceeds max %d", *yearRange.Min, *yearRange.Max)
    }
  }
  return trimmed, nil
}

func buildPublicationsPipeline(universities []string, yearRange *types.YearRange) mongo.Pipeline {
  pipeline := mongo.Pipeline{
    bson.D{{Key: "$project", Value: bson.D{
      {Key: "affiliation", Value: 1},
      {Key: "publications", Value: 1},
    }}},
    bson.D{{Key: "$lookup", Value: bson.D{
      {Key: "from", Value: "publications"},
      {Key: "localField", Value: "publications"},
      {Key: "foreignField", Value: "id"},
      {Key: "as", Value: "pub_data"},
    }}},
    bson.D{{Key: "$unwind", Value: "$pub_data"}},
  }

  match := bson.D{}
  if len(universities) > 0 {
    match = append(match, bson.E{Key: "affiliation.name", Value: bson.D{{Key: "$in", Value: universities}}})
  }
  if yearRange != nil {
    match = append(match, bson.E{Key: "pub_data.year", Value: bson.D{
      {Key: "$gte", Value: *yearRange.Min},
      {Key: "$lte", Value: *yearRange.Max},
    }})
  }
  if len(match) > 0 {
    pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
  }

  pipeline = append(pipeline,
    bson.D{{Key: "$group", Value: bson.D{
      {Key: "_id", Value: bson.D{
        {Key: "university", Value: "$affiliation.name"},
        {Key: "year", Value: "$pub_data.year"},
      }},
      {Key: "university_publications", Value: bson.D{{Key: "$sum", Value: 1}}},
    }}},
    bson.D{{Key: "$sort", Value: bson.D{
      {Key: "_id.university", Value: 1},
      {Key: "_id.year", Value: 1},
    }}},
  )
  return pipeline
}

func (ds *documentService) AllUniversities(ctx context.Context) ([]string, error) {
  values, err := ds.mongo.Faculty().Distinct(ctx, "affiliation.name", bson.D{})
  if err != nil {
    return nil, fmt.Errorf("distinct universities: %w", err)
  }
  names := make([]string, 0, len(values))
  for _, v := range values {
    if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
      names = append(names, s)
    }
  }
  sort.Strings(names)
  return names, nil
}

// PublicationYearRange scans distinct publication years, keeping positive
// integers only; [nil, nil] when none qualify.
func (ds *documentService) PublicationYearRange(ctx context.Context) (types.YearRange, error) {
  values, err := ds.mongo.Publications().Distinct(ctx, "year", bson.D{})
  if err != nil {
    return types.YearRange{}, fmt.Errorf("distinct publication years: %w", err)
  }
  return yearRangeOf(values), nil
}

func yearRangeOf(values []interface{}) types.YearRange {
  var min, max int
  found := false
  for _, v := range values {
    year, ok := toYear(v)
    if !ok || year <= 0 {
      continue
    }
    if !found || year < min {
      min = year
    }
    if !found || year > max {
      max = year
    }
    found = true
  }
  if !found {
    return types.YearRange{}
  }
  lo, hi := min, max
  return types.YearRange{Min: &lo, Max: &hi}
}

// Year fields in the collection are not uniformly typed; only integral
// values count as valid years.
func toYear(v interface{}) (int, bool) {
  switch n := v.(type) {
  case int32:
    return int(n), true
  case int64:
    return int(n), true
  case int:
    return n, true
  case float64:
    if n == float64(int(n)) {
      return int(n), true
    }
    return 0, false
  default:
    return 0, false
  }
}
