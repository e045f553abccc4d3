package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// NamedEntitySortFields are sortable on every catalog and partner table
var NamedEntitySortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// ProductSortFields adds stock columns to the named entity fields
var ProductSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"price":         true,
	"quantity":      true,
	"min_threshold": true,
}

// TransactionSortFields contains allowed sort fields for stock transactions
var TransactionSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"kind":       true,
}
