package domain

// Settings is the flat site configuration record, persisted as a whole under
// its own storage key.
type Settings struct {
	SiteName      string  `json:"siteName"`
	Currency      string  `json:"currency"`
	Language      string  `json:"language"`
	ContactPhone  string  `json:"contactPhone"`
	ContactEmail  string  `json:"contactEmail"`
	Telegram      string  `json:"telegram,omitempty"`
	Address       string  `json:"address,omitempty"`
	BusinessHours string  `json:"businessHours,omitempty"`
	AutoBackup    bool    `json:"autoBackup"`
	LowStockAlert int     `json:"lowStockAlert"`
	TaxRate       float64 `json:"taxRate"`
}
