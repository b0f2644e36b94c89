package models

import "strings"

// Borrow request statuses. Pending rows are created by borrowers; approved and
// rejected are the only transitions the workflow writes. Cancelled exists for
// rows imported from older data and is never produced by the create path.
const (
	BorrowStatusPending   = "pending"
	BorrowStatusApproved  = "approved"
	BorrowStatusRejected  = "rejected"
	BorrowStatusCancelled = "cancelled"
)

// BorrowRequest records one borrower's request against one item.
//
// OwnerID is a denormalized copy of the item's owner at creation time. Items
// are not transferable, so the copy cannot go stale.
type BorrowRequest struct {
	BaseModel

	ItemID     string `gorm:"type:uuid;not null;index" json:"item_id"`
	BorrowerID string `gorm:"type:uuid;not null;index" json:"borrower_id"`
	OwnerID    string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Message    string `gorm:"type:text" json:"message,omitempty"`
	Status     string `gorm:"type:varchar(16);default:'pending';index" json:"status"`

	Item     *Item    `gorm:"constraint:OnDelete:CASCADE" json:"item,omitempty"`
	Borrower *Profile `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	Owner    *Profile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// IsDecision reports whether status is a valid owner decision.
func IsDecision(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case BorrowStatusApproved, BorrowStatusRejected:
		return true
	default:
		return false
	}
}
