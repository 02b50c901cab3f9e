package models

import (
	"time"
)

// ExtractionRecord is one processed receipt image persisted for later
// review. Field columns are the union of both registry variants; columns a
// registry does not declare stay NULL. Failed rows keep the image name and
// reason instead of being dropped so an operator can re-run them.
type ExtractionRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Image     string `gorm:"size:255;not null;index"`
	Registry  string `gorm:"size:32"`

	Sender            *string `gorm:"size:255"`
	Receiver          *string `gorm:"size:255"`
	Amount            *string `gorm:"size:64"`
	BankDetails       *string `gorm:"size:255"`
	TransactionID     *string `gorm:"column:transaction_id;size:128"`
	ReferenceNumber   *string `gorm:"size:128"`
	TransactionStatus *string `gorm:"size:128"`
	TotalAmount       *string `gorm:"size:64"`
	SenderBank        *string `gorm:"size:128"`
	ReceiverBank      *string `gorm:"size:128"`

	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
