package api

// PageItem describes one rendered page.
type PageItem struct {
	Path string `json:"path" example:"blog/post.html"`
	URL  string `json:"url" example:"/blog/post"`
	Size int64  `json:"size" example:"1024"`
}

// PageListResponse wraps the page listing.
type PageListResponse struct {
	Pages []PageItem `json:"pages"`
	Total int        `json:"total" example:"42"`
}
