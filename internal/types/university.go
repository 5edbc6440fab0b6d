package types

type University struct {
  ID       int64   `gorm:"primaryKey;column:id" json:"id"`
  Name     string  `gorm:"column:name;not null;uniqueIndex" json:"name"`
  PhotoURL *string `gorm:"column:photo_url" json:"photo_url,omitempty"`
}

func (University) TableName() string {
  return "university"
}
