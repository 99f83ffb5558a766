// Package table turns raw parameter records into the fixed 8-column row shape
// and suppresses adjacent duplicates so repeated values can be merged.
package table

import (
	"golang.org/x/text/unicode/norm"
)

// NumColumns is the fixed column count of the parameter table.
const NumColumns = 8

// Column indexes, in display order.
const (
	ColParamName = iota
	ColSamplingBatch
	ColSamplingFrequency
	ColSamplingRequire
	ColInspectionRequire
	ColRequiredInfo
	ColStandards
	ColRemark
)

// Headers are the fixed header labels, indexed by column.
var Headers = [NumColumns]string{
	"参数/单价",
	"组批规则",
	"取样频率",
	"取样要求",
	"送检要求",
	"所需信息",
	"检评规范",
	"备注",
}

// remarkLabel prefixes the template code on the second remark line.
const remarkLabel = "委托单"

// Record is the transformer input. Field values may carry the literal null
// markers "null" or "None"; absent values are the empty string.
type Record struct {
	ParamName         string
	Price             string
	SamplingBatch     string
	SamplingFrequency string
	SamplingRequire   string
	InspectionRequire string
	RequiredInfo      string
	Standards         string
	TemplateCode      string
	ReportTime        string
	IsRegularParam    int
}

// Row is one table row: 8 display strings plus the colour flag of the record
// it came from.
type Row struct {
	Cells   [NumColumns]string
	Regular bool
}

// CleanedRow is a Row whose mergeable cells were blanked when they repeat the
// value kept above them.
type CleanedRow Row

// Mergeable reports whether values in column col may be merged vertically.
// Every column except the parameter name is mergeable.
func Mergeable(col int) bool {
	return col > ColParamName && col < NumColumns
}

// Normalize maps the null markers "null" and "None" to the empty string and
// returns every other value unchanged.
func Normalize(s string) string {
	if s == "null" || s == "None" {
		return ""
	}
	return s
}

// field is the Transform view of a record field: null markers stripped and
// the text composed to NFC.
func field(s string) string {
	return norm.NFC.String(Normalize(s))
}

// Transform maps records to rows, preserving length and order.
func Transform(records []Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = transformRecord(rec)
	}
	return rows
}

func transformRecord(rec Record) Row {
	// Markers are stripped before composition so a missing price renders as
	// "name()" rather than "name(null)".
	paramName := field(rec.ParamName) + "(" + field(rec.Price) + ")"
	remark := field(rec.ReportTime) + "\n" + remarkLabel + field(rec.TemplateCode)

	return Row{
		Cells: [NumColumns]string{
			ColParamName:         paramName,
			ColSamplingBatch:     field(rec.SamplingBatch),
			ColSamplingFrequency: field(rec.SamplingFrequency),
			ColSamplingRequire:   field(rec.SamplingRequire),
			ColInspectionRequire: field(rec.InspectionRequire),
			ColRequiredInfo:      field(rec.RequiredInfo),
			ColStandards:         field(rec.Standards),
			ColRemark:            remark,
		},
		Regular: rec.IsRegularParam == 1,
	}
}

// Clean blanks every mergeable cell that equals the last value kept above it
// in the same column. Empty cells stay empty and never replace the last kept
// value. The parameter name column is left untouched.
func Clean(rows []Row) []CleanedRow {
	if len(rows) == 0 {
		return nil
	}

	out := make([]CleanedRow, len(rows))
	var last [NumColumns]string
	for i, row := range rows {
		cleaned := CleanedRow{Regular: row.Regular}
		for col, v := range row.Cells {
			v = Normalize(v)
			cleaned.Cells[col] = v
			if !Mergeable(col) {
				continue
			}
			if i == 0 {
				last[col] = v
				continue
			}
			switch {
			case v == "":
			case v == last[col]:
				cleaned.Cells[col] = ""
			default:
				last[col] = v
			}
		}
		out[i] = cleaned
	}
	return out
}

// Rows converts cleaned rows back to plain rows, for feeding Clean again.
func Rows(cleaned []CleanedRow) []Row {
	rows := make([]Row, len(cleaned))
	for i, c := range cleaned {
		rows[i] = Row(c)
	}
	return rows
}
