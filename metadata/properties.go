package metadata

import (
	"fmt"
	"strings"
)

// Properties renders the flat properties sidecar. It holds exactly one line
// per present field, in the order title, date, geometry, category.
func Properties(record Record) string {
	var sb strings.Builder
	if record.Title != "" {
		fmt.Fprintf(&sb, "title=%s\n", record.Title)
	}
	if record.HasTimeRange() {
		fmt.Fprintf(&sb, "date=%s/%s\n", record.StartDate, record.EndDate)
	}
	if record.WKT != "" {
		fmt.Fprintf(&sb, "geometry=%s\n", singleLineWKT(record.WKT))
	}
	if len(record.Categories) > 0 {
		fmt.Fprintf(&sb, "category=%s\n", record.CategoryExpression())
	}
	return sb.String()
}
