package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Notification delivery channels. A distinct whitelist is maintained per
// (user, channel) pair.
const (
	ChannelInApp = "inApp"
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// KnownChannel reports whether ch is a supported delivery channel.
func KnownChannel(ch string) bool {
	switch ch {
	case ChannelInApp, ChannelEmail, ChannelPush:
		return true
	}
	return false
}

// PatternList stores an ordered list of topic pattern strings as a JSON text
// column. Caller-supplied ordering survives the round-trip; matching treats
// the list as a set.
type PatternList []string

// Value implements driver.Valuer for GORM
func (p PatternList) Value() (driver.Value, error) {
	if p == nil {
		p = PatternList{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for GORM
func (p *PatternList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = PatternList{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into PatternList", value)
}

// NotificationWhitelist is the per-user, per-channel set of topic patterns
// gating event delivery (PostgreSQL). Absence of a row means allow-all; an
// explicit empty list means deny-all.
type NotificationWhitelist struct {
	ID       uint        `json:"-" gorm:"primaryKey"`
	OwnerID  uint        `json:"owner_id" gorm:"uniqueIndex:idx_whitelists_owner_channel"`
	Channel  string      `json:"channel" gorm:"size:20;uniqueIndex:idx_whitelists_owner_channel"`
	Patterns PatternList `json:"patterns" gorm:"type:text"`
}
