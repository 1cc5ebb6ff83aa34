package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// ProviderConfigRepositoryGORM implements shipping.ProviderConfigRepository
// using GORM. Credential blobs pass through this layer encrypted.
type ProviderConfigRepositoryGORM struct {
	db *gorm.DB
}

// NewProviderConfigRepository creates a new GORM-based provider config repository
func NewProviderConfigRepository(db *gorm.DB) *ProviderConfigRepositoryGORM {
	return &ProviderConfigRepositoryGORM{db: db}
}

// ListEnabled returns a shop's enabled provider configs, default first
func (r *ProviderConfigRepositoryGORM) ListEnabled(ctx context.Context, shopID string) ([]*shipping.ProviderConfig, error) {
	var models []ProviderConfigModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND is_enabled = ?", shopID, true).
		Order("is_default DESC, provider_code ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list provider configs for shop %s: %w", shopID, err)
	}

	configs := make([]*shipping.ProviderConfig, 0, len(models))
	for i := range models {
		configs = append(configs, providerConfigToDomain(&models[i]))
	}
	return configs, nil
}

// Find retrieves one (shop, provider) config
func (r *ProviderConfigRepositoryGORM) Find(ctx context.Context, shopID, providerCode string) (*shipping.ProviderConfig, error) {
	var model ProviderConfigModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND provider_code = ?", shopID, providerCode).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("provider config", shopID+"/"+providerCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find provider config: %w", err)
	}
	return providerConfigToDomain(&model), nil
}

// Upsert writes a (shop, provider) config, replacing the credential blob.
// Marking a config default clears the flag on the shop's other configs.
func (r *ProviderConfigRepositoryGORM) Upsert(ctx context.Context, cfg *shipping.ProviderConfig, encryptedBlob []byte) error {
	model := ProviderConfigModel{
		ShopID:       cfg.ShopID,
		ProviderCode: cfg.ProviderCode,
		Credentials:  encryptedBlob,
		IsEnabled:    cfg.IsEnabled,
		IsDefault:    cfg.IsDefault,
		UpdatedAt:    time.Now(),
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cfg.IsDefault {
			err := tx.Model(&ProviderConfigModel{}).
				Where("shop_id = ? AND provider_code <> ?", cfg.ShopID, cfg.ProviderCode).
				Update("is_default", false).Error
			if err != nil {
				return fmt.Errorf("failed to clear default provider flag: %w", err)
			}
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shop_id"}, {Name: "provider_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"credentials", "is_enabled", "is_default", "updated_at",
			}),
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("failed to upsert provider config: %w", err)
		}
		return nil
	})
}

func providerConfigToDomain(m *ProviderConfigModel) *shipping.ProviderConfig {
	return &shipping.ProviderConfig{
		ShopID:               m.ShopID,
		ProviderCode:         m.ProviderCode,
		EncryptedCredentials: m.Credentials,
		IsEnabled:            m.IsEnabled,
		IsDefault:            m.IsDefault,
		UpdatedAt:            m.UpdatedAt,
	}
}
