package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLogin              = "LOGIN"
	ActionLogout             = "LOGOUT"
	ActionCreateArticle      = "CREATE_ARTICLE"
	ActionUpdateArticle      = "UPDATE_ARTICLE"
	ActionDeleteArticle      = "DELETE_ARTICLE"
	ActionCreateRequest      = "CREATE_REQUEST"
	ActionDeleteRequest      = "DELETE_REQUEST"
	ActionAdvanceRequest     = "ADVANCE_REQUEST"
	ActionEditMaterial       = "EDIT_MATERIAL_QUANTITY"
	ActionCreateLoan         = "CREATE_LOAN"
	ActionUpdateLoanDelivery = "UPDATE_LOAN_DELIVERY"
	ActionRegisterUser       = "REGISTER_USER"
	ActionDeleteUser         = "DELETE_USER"
	ActionArchiveReport      = "ARCHIVE_REPORT"
)

// AuditLog tracks who did what through the UI and when
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(255);index" json:"username"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(100);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// SessionRecord persists one browser session in SQL
type SessionRecord struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Data      []byte    `gorm:"type:bytea;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UpdatedAt time.Time
}
