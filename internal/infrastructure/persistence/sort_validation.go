package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"order_number":      true,
	"type":              true,
	"counterparty_id":   true,
	"counterparty_name": true,
	"order_date":        true,
	"status":            true,
	"total_amount":      true,
	"fulfilled_at":      true,
	"cancelled_at":      true,
}

// StockLevelSortFields contains allowed sort fields for stock levels
var StockLevelSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"product_id":       true,
	"quantity_on_hand": true,
}

// StockTransactionSortFields contains allowed sort fields for stock transactions
var StockTransactionSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"occurred_at":  true,
	"line_item_id": true,
	"order_id":     true,
	"product_id":   true,
	"direction":    true,
	"quantity":     true,
	"source_type":  true,
}
