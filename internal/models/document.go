package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is an ingested source file. Rows are produced by the ingestion
// pipeline (or the seed export) and are read-only to the API.
type Document struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	Name     string `gorm:"size:500" json:"name"`
	FilePath string `gorm:"size:1000" json:"filePath,omitempty"`
	FileType string `gorm:"size:100" json:"fileType,omitempty"`
	FileSize *int64 `json:"fileSize,omitempty"`
	Status   string `gorm:"size:50;index" json:"status,omitempty"`

	OrganizationID string `gorm:"size:64;index" json:"organizationId,omitempty"`
	DepartmentID   string `gorm:"size:64;index" json:"departmentId,omitempty"`

	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`

	// Human validation metadata
	IsValidatedByHuman bool       `gorm:"default:false" json:"isValidatedByHuman"`
	SavedAt            *time.Time `json:"savedAt,omitempty"`
	SavedBy            string     `gorm:"size:100" json:"savedBy,omitempty"`
	LastValidatedAt    *time.Time `json:"lastValidatedAt,omitempty"`
	ValidatedBy        string     `gorm:"size:100" json:"validatedBy,omitempty"`
	AnalyticsID        string     `gorm:"size:64" json:"analyticsId,omitempty"`

	MetadataJSON datatypes.JSON `json:"metadata,omitempty"`
	LLMRawJSON   datatypes.JSON `gorm:"column:llm_raw_json" json:"llmRaw,omitempty"`

	Invoice *Invoice `gorm:"foreignKey:DocumentID" json:"invoice,omitempty"`
}
