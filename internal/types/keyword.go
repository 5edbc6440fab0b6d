package types

type Keyword struct {
  ID   int64  `gorm:"primaryKey;column:id" json:"id"`
  Name string `gorm:"column:name;index" json:"name"`
}

func (Keyword) TableName() string {
  return "keyword"
}
