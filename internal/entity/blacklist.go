package entity

import "time"

// BlacklistEntry holds one banned handle of an owner. Handle is stored in
// canonical normalized form.
type BlacklistEntry struct {
	CreatedAt time.Time

	OwnerID string `gorm:"primaryKey"`
	Handle  string `gorm:"primaryKey"`
}
