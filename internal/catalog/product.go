package catalog

// Product is one catalog entry as served by GET /products.
type Product struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Category string   `json:"category" yaml:"category"`
	Brand    string   `json:"brand" yaml:"brand"`
	Price    int64    `json:"price" yaml:"price"`
	Rating   float64  `json:"rating" yaml:"rating"`
	Images   []string `json:"images" yaml:"images"`
}

// Thumbnail returns the first image or "" when the product has none.
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ResultPage is one page of a product query.
//
// TotalCount comes from the out-of-band X-Total-Count response header, not
// from the body; Items holds only the requested page.
type ResultPage struct {
	Items      []Product
	TotalCount int
}

// TotalPages returns ceil(totalCount / pageSize).
//
// A zero result is valid and means "one empty page" to renderers.
// Non-positive page sizes yield 0.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
