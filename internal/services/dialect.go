package services

import (
	"fmt"

	"gorm.io/gorm"
)

// Date truncation differs between PostgreSQL (production) and SQLite (tests).

func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}

// monthExpr renders col as "YYYY-MM".
func monthExpr(db *gorm.DB, col string) string {
	if isSQLite(db) {
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", col)
	}
	return fmt.Sprintf("to_char(date_trunc('month', %s), 'YYYY-MM')", col)
}

// dayExpr renders col as "YYYY-MM-DD".
func dayExpr(db *gorm.DB, col string) string {
	if isSQLite(db) {
		return fmt.Sprintf("date(%s)", col)
	}
	return fmt.Sprintf("to_char(%s::date, 'YYYY-MM-DD')", col)
}
