package types

// Derived query shapes. None of these are persisted; they live for a single
// request/response cycle.

type CitationRank struct {
  Faculty        string `gorm:"column:faculty" json:"faculty"`
  TotalCitations int64  `gorm:"column:total_citations" json:"total_citations"`
}

type UniversityScore struct {
  University string  `gorm:"column:university" json:"university"`
  TotalScore float64 `gorm:"column:total_score" json:"total_score"`
}

type KeywordScoreKind int

const (
  KeywordScoreEmpty KeywordScoreKind = iota
  KeywordScoreNoMatch
  KeywordScoreRows
)

// KeywordScoreResult distinguishes "no data" from "no keyword matched the
// caller's filter" without sentinel rows mixed into the payload.
type KeywordScoreResult struct {
  Kind KeywordScoreKind
  Rows []UniversityScore
}

type FacultyOption struct {
  Name string `gorm:"column:name" json:"name"`
  ID   int64  `gorm:"column:id" json:"id"`
}

type PublicationOption struct {
  Title string `gorm:"column:title" json:"title"`
  ID    int64  `gorm:"column:id" json:"id"`
}

type PublicationCount struct {
  University string `json:"university"`
  Year       int    `json:"year"`
  Count      int64  `json:"count"`
}

type InstituteKRC struct {
  University string  `json:"university"`
  TotalKRC   float64 `json:"total_krc"`
}

// YearRange carries [nil, nil] when no valid positive publication year exists.
type YearRange struct {
  Min *int `json:"min"`
  Max *int `json:"max"`
}
