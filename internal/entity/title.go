package entity

type Title struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:256;not null;index"`
	Year        int       `gorm:"type:smallint;not null;index"`
	Description *string   `gorm:"type:text"`
	PosterURL   *string   `gorm:"type:text"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE"`

	// Rating is the mean review score, filled by the select in the
	// repository and never persisted.
	Rating *float64 `gorm:"->;-:migration"`
}
