package models

// Category is a user-owned label for transactions. Transactions reference a
// category by name, so renaming a category does not relabel existing rows.
type Category struct {
	Base
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string `gorm:"not null" json:"name"`
	Color     string `gorm:"not null" json:"color"`
	Icon      string `gorm:"not null" json:"icon"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"`
}
