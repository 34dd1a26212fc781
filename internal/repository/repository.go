package repository

import "gorm.io/gorm"

// unscoped allows a statement without a WHERE clause, used to clear a table.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{AllowGlobalUpdate: true})
}
