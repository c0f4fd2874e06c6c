package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
	"github.com/odyssey-erp/salesboard/internal/salesreport/export"
)

// Export formats supported by ExportCLI.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Refresher loads a report onto a board.
type Refresher interface {
	Refresh(ctx context.Context, board *salesreport.Board, filter salesreport.Filter) error
}

// SortSpec describes one column to sort a table by.
type SortSpec struct {
	Table      salesreport.Table
	Column     string
	Descending bool
}

// ParseSortSpec reads "table:column[:asc|:desc]". The column may itself
// contain colons; only a trailing asc or desc segment is read as direction.
func ParseSortSpec(raw string) (SortSpec, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) < 2 || parts[1] == "" {
		return SortSpec{}, fmt.Errorf("sort %q: want table:column[:desc]", raw)
	}
	spec := SortSpec{Table: salesreport.Table(parts[0]), Column: parts[1]}
	if !spec.Table.Valid() {
		return SortSpec{}, fmt.Errorf("sort %q: unknown table %s", raw, parts[0])
	}
	if i := strings.LastIndex(spec.Column, ":"); i >= 0 {
		switch spec.Column[i+1:] {
		case "asc":
			spec.Column = spec.Column[:i]
		case "desc":
			spec.Column = spec.Column[:i]
			spec.Descending = true
		}
	}
	if spec.Column == "" {
		return SortSpec{}, fmt.Errorf("sort %q: missing column", raw)
	}
	return spec, nil
}

// ExportOptions drives a single headless export.
type ExportOptions struct {
	Filter salesreport.Filter
	Format string
	Sorts  []SortSpec
}

// ExportCLI fetches a report and writes the sorted tables to a file.
type ExportCLI struct {
	service Refresher
}

// NewExportCLI constructs the export helper.
func NewExportCLI(service Refresher) *ExportCLI {
	return &ExportCLI{service: service}
}

// Run loads the report, applies the requested sorts and writes the export to w.
func (c *ExportCLI) Run(ctx context.Context, opts ExportOptions, w io.Writer) error {
	if c == nil || c.service == nil {
		return errors.New("export cli: service not configured")
	}
	board := salesreport.NewBoard()
	if err := c.service.Refresh(ctx, board, opts.Filter); err != nil {
		return err
	}
	for _, spec := range opts.Sorts {
		if !board.AcceptsColumn(spec.Table, spec.Column) {
			return fmt.Errorf("export cli: column %q is not sortable on %s", spec.Column, spec.Table)
		}
		activateTo(board, spec)
	}

	view := board.View()
	switch opts.Format {
	case FormatCSV, "":
		if err := export.WriteSummaryCSV(w, view); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		return export.WritePivotCSV(w, view)
	case FormatXLSX:
		return export.WriteXLSX(w, view)
	default:
		return fmt.Errorf("export cli: unsupported format %s", opts.Format)
	}
}

// activateTo clicks the column until the board reaches the requested direction.
func activateTo(board *salesreport.Board, spec SortSpec) {
	want := salesreport.DirectionAsc
	if spec.Descending {
		want = salesreport.DirectionDesc
	}
	for i := 0; i < 3; i++ {
		state := board.SortState(spec.Table)
		if state.Column == spec.Column && state.Direction == want {
			return
		}
		board.OnColumnActivate(spec.Table, spec.Column)
	}
}
