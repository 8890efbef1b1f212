package models

import "gorm.io/gorm"

// All returns every relational model in dependency order
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Video{},
		&Collection{},
		&CollectionVideo{},
		&Comment{},
		&Like{},
		&ActivityLog{},
		&Notification{},
		&CollectionShare{},
	}
}

// AutoMigrate creates or updates the relational schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
