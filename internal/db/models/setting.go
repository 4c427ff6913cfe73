// Package models contains database model definitions.
package models

// Setting represents an application-wide configuration setting stored in
// the database, editable by administrators holding manage-settings.
type Setting struct {
	ID    uint64 `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"unique" json:"name"`
	Value []byte `gorm:"type:blob" json:"value"`
}
