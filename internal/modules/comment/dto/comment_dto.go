package dto

import "time"

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text *string `json:"text" binding:"omitempty,min=1"`
}

type ReviewURI struct {
	TitleID  uint `uri:"title_id" binding:"required,min=1"`
	ReviewID uint `uri:"review_id" binding:"required,min=1"`
}

type CommentURI struct {
	TitleID   uint `uri:"title_id" binding:"required,min=1"`
	ReviewID  uint `uri:"review_id" binding:"required,min=1"`
	CommentID uint `uri:"comment_id" binding:"required,min=1"`
}

type CommentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}
