package review

import "ignitegigs/internal/domain"

type CreateReviewRequest struct {
	Rating                int    `json:"rating" binding:"required,gte=1,lte=5"`
	Content               string `json:"content,omitempty" binding:"max=2000"`
	ProfessionalismRating *int   `json:"professionalism_rating,omitempty" binding:"omitempty,gte=1,lte=5"`
	CommunicationRating   *int   `json:"communication_rating,omitempty" binding:"omitempty,gte=1,lte=5"`
	ValueRating           *int   `json:"value_rating,omitempty" binding:"omitempty,gte=1,lte=5"`
	// Private reviews reach the platform but are not listed on profiles.
	Private bool `json:"private,omitempty"`
}

type ResponseRequest struct {
	Response string `json:"response" binding:"required,max=2000"`
}

type PerformerReviews struct {
	Summary domain.RatingSummary `json:"summary"`
	Reviews []domain.Review      `json:"reviews"`
}
