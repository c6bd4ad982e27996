package excel

// RawRowData represents a row of raw table data as string key-value pairs
type RawRowData map[string]string

// TableData represents a complete tabular dataset as read from disk
type TableData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether the header row names the column exactly
func (d *TableData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}
