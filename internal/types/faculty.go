package types

type Faculty struct {
  ID           int64       `gorm:"primaryKey;column:id" json:"id"`
  Name         string      `gorm:"column:name;not null" json:"name"`
  UniversityID int64       `gorm:"column:university_id;index" json:"university_id"`
  University   *University `gorm:"foreignKey:UniversityID;references:ID" json:"university,omitempty"`
}

func (Faculty) TableName() string {
  return "faculty"
}

type FacultyPublication struct {
  FacultyID     int64 `gorm:"primaryKey;column:faculty_id" json:"faculty_id"`
  PublicationID int64 `gorm:"primaryKey;column:publication_id" json:"publication_id"`
}

func (FacultyPublication) TableName() string {
  return "faculty_publication"
}

type FacultyKeyword struct {
  FacultyID int64   `gorm:"primaryKey;column:faculty_id" json:"faculty_id"`
  KeywordID int64   `gorm:"primaryKey;column:keyword_id" json:"keyword_id"`
  Score     float64 `gorm:"column:score" json:"score"`
}

func (FacultyKeyword) TableName() string {
  return "faculty_keyword"
}
