package shipping

import (
	"context"
	"time"
)

// ShipmentRepository is the persistence port for shipments. Status history
// is stored with the shipment and saved atomically with it.
type ShipmentRepository interface {
	Create(ctx context.Context, s *Shipment) error
	Save(ctx context.Context, s *Shipment) error
	FindByID(ctx context.Context, id string) (*Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Shipment, error)
	FindBySubOrderID(ctx context.Context, subOrderID string) (*Shipment, error)
	FindByProviderOrderID(ctx context.Context, providerCode, providerOrderID string) (*Shipment, error)
	ListUncollectedCOD(ctx context.Context, shipperID string) ([]*Shipment, error)
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*Shipment, error)
}

// ProviderConfigRepository stores the per-(shop, provider) credential
// records. Blobs arrive and leave encrypted; the vault in the provider
// adapter is the only place that sees plaintext.
type ProviderConfigRepository interface {
	ListEnabled(ctx context.Context, shopID string) ([]*ProviderConfig, error)
	Find(ctx context.Context, shopID, providerCode string) (*ProviderConfig, error)
	Upsert(ctx context.Context, cfg *ProviderConfig, encryptedBlob []byte) error
}
