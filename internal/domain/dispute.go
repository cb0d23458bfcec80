package domain

import (
	"fmt"
	"time"
)

type DisputeStatus string

const (
	DisputeOpen             DisputeStatus = "open"
	DisputeUnderReview      DisputeStatus = "under_review"
	DisputeResolvedRefund   DisputeStatus = "resolved_refund"
	DisputeResolvedWarning  DisputeStatus = "resolved_warning"
	DisputeResolvedNoAction DisputeStatus = "resolved_no_action"
	DisputeClosed           DisputeStatus = "closed"
)

func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeOpen, DisputeUnderReview, DisputeResolvedRefund,
		DisputeResolvedWarning, DisputeResolvedNoAction, DisputeClosed:
		return true
	}
	return false
}

// IsFinal reports whether an administrator has concluded the dispute.
func (s DisputeStatus) IsFinal() bool {
	switch s {
	case DisputeResolvedRefund, DisputeResolvedWarning, DisputeResolvedNoAction, DisputeClosed:
		return true
	}
	return false
}

func ParseDisputeStatus(v string) (DisputeStatus, error) {
	s := DisputeStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid dispute status: %q", v)
	}
	return s, nil
}

type DisputeReason string

const (
	ReasonNoShow        DisputeReason = "no_show"
	ReasonPoorQuality   DisputeReason = "poor_quality"
	ReasonSafetyConcern DisputeReason = "safety_concern"
	ReasonPaymentIssue  DisputeReason = "payment_issue"
	ReasonHarassment    DisputeReason = "harassment"
	ReasonOther         DisputeReason = "other"
)

func (r DisputeReason) IsValid() bool {
	switch r {
	case ReasonNoShow, ReasonPoorQuality, ReasonSafetyConcern,
		ReasonPaymentIssue, ReasonHarassment, ReasonOther:
		return true
	}
	return false
}

// Label is the human-readable form used in notifications.
func (r DisputeReason) Label() string {
	switch r {
	case ReasonNoShow:
		return "No show"
	case ReasonPoorQuality:
		return "Poor quality"
	case ReasonSafetyConcern:
		return "Safety concern"
	case ReasonPaymentIssue:
		return "Payment issue"
	case ReasonHarassment:
		return "Harassment"
	default:
		return "Other"
	}
}

// MinDisputeDescription is the shortest accepted description, after trimming.
const MinDisputeDescription = 50

type Dispute struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BookingID     string        `json:"booking_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_disputes_booking_raiser"`
	RaisedBy      string        `json:"raised_by" gorm:"type:varchar(36);not null;uniqueIndex:idx_disputes_booking_raiser"`
	RaisedAgainst string        `json:"raised_against" gorm:"type:varchar(36);not null"`
	Reason        DisputeReason `json:"reason" gorm:"type:varchar(32);not null"`
	Description   string        `json:"description" gorm:"type:text;not null"`
	EvidenceURLs  []string      `json:"evidence_urls" gorm:"serializer:json;type:text"`
	Status        DisputeStatus `json:"status" gorm:"type:varchar(32);not null;index"`
	Resolution    string        `json:"resolution,omitempty" gorm:"type:text"`
	AdminNotes    string        `json:"admin_notes,omitempty" gorm:"type:text"`
	RefundAmount  *int64        `json:"refund_amount_pence,omitempty"`
	ResolvedBy    string        `json:"resolved_by,omitempty" gorm:"type:varchar(36)"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Dispute) TableName() string { return "disputes" }
