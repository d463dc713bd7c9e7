package dto

type CreateNews struct {
	Name        string `json:"name" binding:"required,max=127"`
	Slug        string `json:"slug" binding:"required,max=127"`
	Description string `json:"description" binding:"required"`
	ImageURL    string `json:"image_url"`
	Status      string `json:"status" binding:"omitempty,oneof=draft published"`
}

type UpdateNews struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Status      string `json:"status" binding:"omitempty,oneof=draft published"`
}

type PollVote struct {
	Vote string `json:"vote" binding:"required,oneof=like dislike"`
}

type CreateFeedback struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}
