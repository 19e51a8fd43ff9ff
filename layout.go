package tabskema

import (
	"fmt"
	"slices"
	"strings"
)

// Layout describes where the header is and which rows carry no data.
// The zero value means: one header row at row 1, joined with a space,
// case-sensitive labels, no comments.
type Layout struct {
	// NoHeader disables the header; every row is data.
	NoHeader bool `json:"noHeader,omitempty" yaml:"noHeader,omitempty"`
	// HeaderRows lists the 1-based row numbers that form the header. Nil
	// means []int{1}.
	HeaderRows []int `json:"headerRows,omitempty" yaml:"headerRows,omitempty"`
	// HeaderJoin joins the cells of multi-row headers. Empty means " ".
	HeaderJoin string `json:"headerJoin,omitempty" yaml:"headerJoin,omitempty"`
	// HeaderIgnoreCase compares labels to field names case-insensitively.
	HeaderIgnoreCase bool   `json:"headerIgnoreCase,omitempty" yaml:"headerIgnoreCase,omitempty"`
	CommentChar      string `json:"commentChar,omitempty" yaml:"commentChar,omitempty"`
	CommentRows      []int  `json:"commentRows,omitempty" yaml:"commentRows,omitempty"`
	SkipBlankRows    bool   `json:"skipBlankRows,omitempty" yaml:"skipBlankRows,omitempty"`
}

// HasHeader reports whether the layout has header rows.
func (l *Layout) HasHeader() bool { return l == nil || !l.NoHeader }

// HeaderRowNumbers returns the header row numbers, or nil without header.
func (l *Layout) HeaderRowNumbers() []int {
	if !l.HasHeader() {
		return nil
	}
	if l == nil || l.HeaderRows == nil {
		return []int{1}
	}
	return slices.Clone(l.HeaderRows)
}

// Join returns the separator for multi-row header labels.
func (l *Layout) Join() string {
	if l == nil || l.HeaderJoin == "" {
		return " "
	}
	return l.HeaderJoin
}

// IgnoreCase reports whether labels compare case-insensitively.
func (l *Layout) IgnoreCase() bool { return l != nil && l.HeaderIgnoreCase }

// Keeps reports whether a row takes part in the table. Comment rows and,
// when SkipBlankRows is set, blank rows are filtered out.
func (l *Layout) Keeps(rowNumber int, cells []any) bool {
	if l == nil {
		return true
	}
	if slices.Contains(l.CommentRows, rowNumber) {
		return false
	}
	if l.CommentChar != "" && len(cells) > 0 {
		if s, ok := cells[0].(string); ok && strings.HasPrefix(s, l.CommentChar) {
			return false
		}
	}
	if l.SkipBlankRows && IsBlankRow(cells) {
		return false
	}
	return true
}

// IsBlankRow reports whether every cell is nil or an empty string.
func IsBlankRow(cells []any) bool {
	for _, c := range cells {
		if c == nil {
			continue
		}
		if s, ok := c.(string); ok && s == "" {
			continue
		}
		return false
	}
	return true
}

// Clone returns a deep copy.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	c := *l
	c.HeaderRows = slices.Clone(l.HeaderRows)
	c.CommentRows = slices.Clone(l.CommentRows)
	return &c
}

// Labels builds header labels from the header rows. Cells of multi-row
// headers are joined per column.
func (l *Layout) Labels(headerRows [][]any) []string {
	width := 0
	for _, r := range headerRows {
		width = max(width, len(r))
	}
	labels := make([]string, width)
	for i := range labels {
		var parts []string
		for _, r := range headerRows {
			if i < len(r) && r[i] != nil {
				if s := cellText(r[i]); s != "" {
					parts = append(parts, s)
				}
			}
		}
		labels[i] = strings.Join(parts, l.Join())
	}
	return labels
}

func cellText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
