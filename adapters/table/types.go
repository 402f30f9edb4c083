package table

import (
	"path/filepath"
	"strings"
)

// Supported file formats
const (
	FormatTSV  = "tsv"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DetectFormat maps a file extension to a format. The simulator writes
// tab-separated .txt files, so unknown extensions default to TSV.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatTSV
	}
}
