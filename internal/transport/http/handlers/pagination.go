package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationHeader is the X-Pagination metadata attached to list responses.
// Field names are camelCase for parity with the admin console client.
type PaginationHeader struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
}

const paginationHeaderName = "X-Pagination"

// parsePageParams reads page/pageSize query parameters, falling back to
// sensible defaults on absent or malformed values.
func parsePageParams(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 10

	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := c.Query("pageSize"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	return page, pageSize
}

// writePaginationHeader serializes pagination metadata into the X-Pagination
// response header.
func writePaginationHeader(c *gin.Context, page, pageSize, totalItems int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}

	header := PaginationHeader{
		CurrentPage:  page,
		ItemsPerPage: pageSize,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
	}

	payload, err := json.Marshal(header)
	if err != nil {
		return
	}

	c.Header(paginationHeaderName, string(payload))
}
