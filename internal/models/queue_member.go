package models

import (
	"time"

	"gorm.io/gorm"
)

type QueueMember struct {
	gorm.Model
	RoomID      string `gorm:"uniqueIndex:idx_room_address;not null"`
	Address     string `gorm:"uniqueIndex:idx_room_address;not null"` // Lower-cased identity key
	DisplayName *string
	AvatarURL   *string
	BalanceHint string    `gorm:"default:'0'"` // Token balance captured at join, never re-validated
	Position    int       `gorm:"index;not null"`
	JoinedAt    time.Time `gorm:"not null"`
	LastSeenAt  time.Time `gorm:"index;not null"` // Refreshed by heartbeats, drives TTL eviction
}
