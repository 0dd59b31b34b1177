package models

import (
	"time"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/auth"
)

// User is a dashboard account. Role is stored lowercase.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // never exposed in JSON
	Role         auth.Role `gorm:"size:16;not null;default:'analyst'" json:"role"`
}

// QueryLog is the append-only audit trail of chat-with-data prompts.
type QueryLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	SQL       *string   `gorm:"column:sql;type:text" json:"sql"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Document{}, &Vendor{}, &Customer{}, &Invoice{}, &LineItem{}, &User{}, &QueryLog{},
	}
}
