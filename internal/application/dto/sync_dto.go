package dto

// SyncMaterialCounts conteos de insumos de una corrida de sincronización.
type SyncMaterialCounts struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Deleted    int `json:"deleted"`
	NotDeleted int `json:"not_deleted"`
	Skipped    int `json:"skipped"`
}

// SyncProductCounts conteos de perfumes generados o actualizados.
type SyncProductCounts struct {
	Created          int      `json:"created"`
	Updated          int      `json:"updated"`
	Failed           int      `json:"failed"`
	ResellerRepriced int      `json:"reseller_repriced"`
	Orphaned         []string `json:"orphaned,omitempty"`
	Ungendered       []string `json:"ungendered,omitempty"`
}

// SyncResponse resultado de GET|POST /api/cron/sync-prices.
type SyncResponse struct {
	Supplier   string             `json:"supplier"`
	Materials  SyncMaterialCounts `json:"materials"`
	Products   SyncProductCounts  `json:"products"`
	Missing    []string           `json:"missing_base_materials,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	DurationMS int64              `json:"duration_ms"`
}
