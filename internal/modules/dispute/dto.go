package dispute

import "ignitegigs/internal/domain"

type RaiseDisputeRequest struct {
	Reason      domain.DisputeReason `json:"reason" binding:"required"`
	Description string               `json:"description" binding:"required"`
	// Evidence holds links, one per entry or newline separated.
	Evidence []string `json:"evidence_urls"`
}

type ResolveRequest struct {
	Status       domain.DisputeStatus `json:"status" binding:"required"`
	Resolution   string               `json:"resolution" binding:"max=2000"`
	RefundAmount *int64               `json:"refund_amount_pence"`
}

type NotesRequest struct {
	Notes string `json:"notes" binding:"required,max=5000"`
}
