package controllers

import (
	"net/http"
	"strconv"
)

const defaultPerPage = 50

// helperPagination returns requested page of data.
// The page and per_page query values are clamped to valid range.
func helperPagination[T any](r *http.Request, data []T) (_ []T, page int, pages int) {
	query := r.URL.Query()
	page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(query.Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}

	total := len(data)
	pages = (total + perPage - 1) / perPage
	if pages < 1 {
		return data, 1, 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return data[start:end], page, pages
}
