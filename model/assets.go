package model

import "time"

// Asset is the central record for a registered ownable asset. Asset IDs come
// from a strictly increasing global counter and are never reused.
type Asset struct {
	ObjectType    string    `json:"objectType"` // "Asset"
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	AssetType     string    `json:"assetType"`
	OwnerID       string    `json:"ownerId"`
	Metadata      string    `json:"metadata"`
	RegisteredAt  time.Time `json:"registeredAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// OwnershipRecord is one interval of an asset's ownership timeline.
// EndTime is the zero time while the interval is open; appending the next
// interval closes it by setting EndTime to the new interval's StartTime, so
// per asset the records form a contiguous, non-overlapping sequence with
// exactly one open entry.
type OwnershipRecord struct {
	ObjectType string    `json:"objectType"`
	AssetID    uint64    `json:"assetId"`
	Index      uint64    `json:"index"` // Per-asset sequence index starting at 0
	OwnerID    string    `json:"ownerId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

// Open reports whether this record is the asset's current ownership interval.
func (r *OwnershipRecord) Open() bool {
	return r.EndTime.IsZero()
}
