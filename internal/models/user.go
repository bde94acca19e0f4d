package models

import "time"

// User represents a registered user and their last known location.
// The JSON shape of this struct is the public projection: the password
// hash is excluded from marshaling, so it is never serialized.
type User struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Username         string     `json:"username" gorm:"uniqueIndex;type:varchar(255)" validate:"required,min=3,max=255"`
	Password         string     `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash; never serialized
	LastLatitude     *float64   `json:"last_latitude"`
	LastLongitude    *float64   `json:"last_longitude"`
	LastLocationTime *time.Time `json:"last_location_time"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName keeps the table name in line with the original schema.
func (User) TableName() string {
	return "users"
}
