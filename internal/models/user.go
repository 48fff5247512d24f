package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Address      string `gorm:"uniqueIndex;not null"` // Wallet address, stored lower-cased
	DisplayName  string
	AvatarURL    string
	FarcasterFID uint64 `gorm:"index"` // 0 when the wallet has no Farcaster account linked
}
