package entity

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

type Review struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"type:smallint;not null;check:chk_reviews_score,score >= 1 AND score <= 10"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_review_title_author,priority:1"`
	Title    Title     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_review_title_author,priority:2;index"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE"`
	PubDate  time.Time `gorm:"autoCreateTime;index;<-:create"`
}

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	ReviewID uint      `gorm:"not null;index"`
	Review   Review    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE"`
	PubDate  time.Time `gorm:"autoCreateTime;<-:create"`
}
