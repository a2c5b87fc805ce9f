package dto

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
