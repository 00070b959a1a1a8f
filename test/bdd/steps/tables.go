package steps

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/colony-go/internal/domain/resource"
)

// cellValue returns the cell of row under columnName, using the first table
// row as the header
func cellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, header := range table.Rows[0].Cells {
		if header.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

// amountsTable reads a "| kind | <column> |" table into a resource map
func amountsTable(table *godog.Table, column string) (map[resource.Kind]uint32, error) {
	out := make(map[resource.Kind]uint32)
	for _, row := range table.Rows[1:] {
		kind := cellValue(table, row, "kind")
		n, err := strconv.ParseUint(cellValue(table, row, column), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("row %q: invalid %s: %w", kind, column, err)
		}
		out[resource.Kind(kind)] = uint32(n)
	}
	return out, nil
}

func expectUint(what string, want, got uint32) error {
	if want != got {
		return fmt.Errorf("expected %s to be %d, got %d", what, want, got)
	}
	return nil
}
