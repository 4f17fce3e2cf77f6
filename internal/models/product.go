package models

// Product is a catalog entry. Immutable once loaded; the full catalog is
// read once per process.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// PromptProduct is the subset of product fields embedded into the routine
// generation prompt.
type PromptProduct struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}
