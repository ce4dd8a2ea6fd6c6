package repository

import (
	"strings"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const (
	defaultSortField = "createdAt"
	defaultSortOrder = "desc"
)

// batchSortColumns is the sort allow-list. Keys are API field names.
var batchSortColumns = map[string]string{
	"batchId":   "batch_id",
	"batchName": "batch_name",
	"startDate": "start_date",
	"endDate":   "end_date",
	"status":    "status",
	"createdAt": "created_at",
}

// ListParams filters, sorts and paginates batch listings.
type ListParams struct {
	Status       *domain.BatchStatus
	NameContains string
	CreatedFrom  *time.Time
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

// Normalized clamps pagination and replaces sort options outside the allow-list with the default.
func (p ListParams) Normalized() ListParams {
	p.Page, p.PageSize = NormalizePage(p.Page, p.PageSize)
	p.NameContains = strings.TrimSpace(p.NameContains)

	if _, ok := batchSortColumns[p.SortBy]; !ok {
		p.SortBy = defaultSortField
	}
	order := strings.ToLower(strings.TrimSpace(p.SortOrder))
	if order != "asc" && order != "desc" {
		order = defaultSortOrder
	}
	p.SortOrder = order
	return p
}

// OrderClause renders the ORDER BY expression from allow-listed values only.
// batch_id breaks ties so pages are stable.
func (p ListParams) OrderClause() string {
	n := p.Normalized()
	clause := batchSortColumns[n.SortBy] + " " + strings.ToUpper(n.SortOrder)
	if n.SortBy != "batchId" {
		clause += ", batch_id ASC"
	}
	return clause
}

// NormalizePage applies the shared pagination clamps: page >= 1 and page size in [1, MaxPageSize].
// A zero page size selects DefaultPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	page = max(page, 1)
	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// TotalPages returns the number of pages needed for total rows.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// ResponseListParams filters and paginates responses of one batch.
type ResponseListParams struct {
	ValidationStatus *domain.ValidationStatus
	Page             int
	PageSize         int
}

func (p ResponseListParams) Normalized() ResponseListParams {
	p.Page, p.PageSize = NormalizePage(p.Page, p.PageSize)
	return p
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
