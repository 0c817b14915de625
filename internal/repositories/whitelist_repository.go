package repositories

import (
	"errors"

	"github.com/openwaterlog/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WhitelistRepository defines the interface for whitelist persistence.
// GetWhitelist returns (nil, nil) when no record exists for the pair; the
// default-allow policy for that case belongs to the caller, not the store.
type WhitelistRepository interface {
	GetWhitelist(ownerID uint, channel string) (*models.NotificationWhitelist, error)
	ReplaceWhitelist(ownerID uint, channel string, patterns models.PatternList) (*models.NotificationWhitelist, error)
}

type postgresWhitelistRepository struct {
	db *gorm.DB
}

func NewPostgresWhitelistRepository(db *gorm.DB) WhitelistRepository {
	return &postgresWhitelistRepository{db: db}
}

func (r *postgresWhitelistRepository) GetWhitelist(ownerID uint, channel string) (*models.NotificationWhitelist, error) {
	var whitelist models.NotificationWhitelist
	err := r.db.Where("owner_id = ? AND channel = ?", ownerID, channel).First(&whitelist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &whitelist, nil
}

// ReplaceWhitelist overwrites the pattern list wholesale, creating the row
// lazily on first write. Replacing with an identical list is a no-op that
// still reports success.
func (r *postgresWhitelistRepository) ReplaceWhitelist(ownerID uint, channel string, patterns models.PatternList) (*models.NotificationWhitelist, error) {
	whitelist := &models.NotificationWhitelist{
		OwnerID:  ownerID,
		Channel:  channel,
		Patterns: patterns,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"patterns"}),
	}).Create(whitelist).Error
	if err != nil {
		return nil, err
	}
	return whitelist, nil
}
