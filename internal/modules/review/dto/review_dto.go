package dto

import "time"

type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score *int   `json:"score" binding:"required,score"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text" binding:"omitempty,min=1"`
	Score *int    `json:"score" binding:"omitempty,score"`
}

type TitleURI struct {
	TitleID uint `uri:"title_id" binding:"required,min=1"`
}

type ReviewURI struct {
	TitleID  uint `uri:"title_id" binding:"required,min=1"`
	ReviewID uint `uri:"review_id" binding:"required,min=1"`
}

type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}
