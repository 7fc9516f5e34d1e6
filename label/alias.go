package label

import "strings"

// aliases maps legacy keyword names onto the keyword they mean today.
var aliases = map[string]string{
	"IMAGE_LINES":     "LINES",
	"TABLE_ROWS":      "ROWS",
	"TABLE_COLUMNS":   "COLUMNS",
	"ROW_COLUMNS":     "COLUMNS",
	"TABLE_ROW_BYTES": "ROW_BYTES",
	"COLUMN_BYTES":    "BYTES",
	"ITEM_TYPE":       "DATA_TYPE",
}

// Canonical returns the current name for a keyword, resolving legacy aliases.
func Canonical(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// IsAlias reports whether name is a legacy spelling of another keyword.
func IsAlias(name string) bool {
	_, ok := aliases[strings.ToUpper(name)]
	return ok
}
