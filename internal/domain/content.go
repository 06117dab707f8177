package domain

// Product is a catalog entry served from the content store. Price is
// in major currency units, matching how the catalog is authored.
type Product struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	InStock     bool    `json:"in_stock"`
}

// Collection groups products for browsing. Products reference their
// collection by ID in the content store.
type Collection struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

// Review is buyer feedback attached to a product.
type Review struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ProductID        string `json:"product_id,omitempty"`
	Reviewer         string `json:"reviewer"`
	Rating           int    `json:"rating"`
	Body             string `json:"body"`
	VerifiedPurchase bool   `json:"verified_purchase"`
}

// BlogPost is an editorial article. Tags are authored as a single
// comma-separated field in the content store and split on read.
type BlogPost struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Author   string   `json:"author,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Content  string   `json:"content"`
}

// Page is an editorial page served from the content store.
type Page struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
