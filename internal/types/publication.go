package types

type Publication struct {
  ID           int64   `gorm:"primaryKey;column:id" json:"id"`
  Title        string  `gorm:"column:title" json:"title"`
  Venue        *string `gorm:"column:venue" json:"venue,omitempty"`
  Year         *int    `gorm:"column:year" json:"year,omitempty"`
  NumCitations int64   `gorm:"column:num_citations" json:"num_citations"`
}

func (Publication) TableName() string {
  return "publication"
}

// PublicationPatch is a typed partial update: nil fields are left untouched.
// Only these four columns are ever updatable; the column list never comes
// from caller input.
type PublicationPatch struct {
  Title        *string `json:"title,omitempty"`
  Venue        *string `json:"venue,omitempty"`
  Year         *int    `json:"year,omitempty"`
  NumCitations *int64  `json:"num_citations,omitempty"`
}

func (p PublicationPatch) IsEmpty() bool {
  return p.Title == nil && p.Venue == nil && p.Year == nil && p.NumCitations == nil
}

// Columns returns the parameterized column/value set for the non-nil fields.
func (p PublicationPatch) Columns() map[string]interface{} {
  updates := make(map[string]interface{}, 4)
  if p.Title != nil {
    updates["title"] = *p.Title
  }
  if p.Venue != nil {
    updates["venue"] = *p.Venue
  }
  if p.Year != nil {
    updates["year"] = *p.Year
  }
  if p.NumCitations != nil {
    updates["num_citations"] = *p.NumCitations
  }
  return updates
}
