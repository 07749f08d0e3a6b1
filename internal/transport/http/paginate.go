package http

import (
	"fmt"
	"net/url"
)

// PageLink is one button in the pagination control.
type PageLink struct {
	No      int
	URL     string
	Current bool
}

// Pagination is the view model for a paged listing.
type Pagination struct {
	Count   int
	PerPage int
	Page    int
	Links   []PageLink
}

// paginate builds the control for count items split into perPage-sized
// pages, keeping the other query parameters of baseURL intact.
func paginate(count, perPage, page int, baseURL *url.URL) *Pagination {
	totalPages := (count + perPage - 1) / perPage
	p := &Pagination{Count: count, PerPage: perPage, Page: page}
	for no := 1; no <= totalPages; no++ {
		query := baseURL.Query()
		query.Set("pageno", fmt.Sprint(no))
		p.Links = append(p.Links, PageLink{
			No:      no,
			URL:     baseURL.Path + "?" + query.Encode(),
			Current: no == page,
		})
	}
	return p
}
