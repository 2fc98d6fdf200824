package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Wallet struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	UserID         string          `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,7);not null" json:"balance"`
	Currency       string          `gorm:"size:10;not null;default:'USDC'" json:"currency"`
	Network        string          `gorm:"size:20" json:"network"`
	// DepositAddress is the investor's own account (G...) or a muxed
	// treasury sub-account (M...).
	DepositAddress string          `gorm:"size:69" json:"deposit_address"`
}

// TableName overrides the table name
func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
