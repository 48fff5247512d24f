package models

import "gorm.io/gorm"

type Station struct {
	gorm.Model
	Slug         string `gorm:"uniqueIndex;not null"` // External room key used by queue routes
	Name         string `gorm:"not null"`
	Genre        string
	StreamURL    string
	OwnerAddress string `gorm:"index;not null"` // Wallet of the station creator, lower-cased
	IsLive       bool   `gorm:"default:false"`
	// Denormalized mirror of the active QueueMember rows for this room.
	// Updated in the same transaction as the member row, floored at zero.
	ListenerCount int `gorm:"default:0"`
}
