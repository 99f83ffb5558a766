package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/q939055502/jy-syzn"
	"github.com/q939055502/jy-syzn/internal/yamlutil"
)

// Sentinel errors for records files.
var (
	ErrReadRecords    = errors.New("failed to read records file")
	ErrInvalidRecords = errors.New("invalid records file")
)

// recordsFile is the decoded content of one records file.
type recordsFile struct {
	ItemID  string
	Records []paramtable.ParameterRecord
}

// readRecords loads a YAML or JSON records file. The document is either a
// list of records or a mapping with a "records" list and an optional
// "item_id". Unknown record fields are ignored so database exports can be
// used as they are.
func readRecords(path string) (*recordsFile, error) {
	f, err := os.Open(path) // #nosec G304 -- discovered path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRecords, err)
	}
	defer f.Close()

	var doc any
	if err := yamlutil.Decode(f, &doc, false); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRecords, path, err)
	}

	out := &recordsFile{ItemID: baseName(path)}
	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		if id := scalar(v["item_id"]); id != "" {
			out.ItemID = id
		}
		list, ok := v["records"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: missing \"records\" list", ErrInvalidRecords, path)
		}
		items = list
	default:
		return nil, fmt.Errorf("%w: %s: expected a list or a mapping", ErrInvalidRecords, path)
	}

	out.Records = make([]paramtable.ParameterRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: record %d is not a mapping", ErrInvalidRecords, path, i)
		}
		out.Records = append(out.Records, toRecord(m))
	}
	return out, nil
}

// toRecord maps a decoded record. Standards may be a preformatted string or
// a list of {standard_name, standard_code}; the template code may be nested
// under "template".
func toRecord(m map[string]any) paramtable.ParameterRecord {
	return paramtable.ParameterRecord{
		ParamName:         scalar(m["param_name"]),
		Price:             scalar(m["price"]),
		SamplingBatch:     scalar(m["sampling_batch"]),
		SamplingFrequency: scalar(m["sampling_frequency"]),
		SamplingRequire:   scalar(m["sampling_require"]),
		InspectionRequire: scalar(m["inspection_require"]),
		RequiredInfo:      scalar(m["required_info"]),
		Standards:         standards(m["standards"]),
		TemplateCode:      templateCode(m),
		ReportTime:        scalar(m["report_time"]),
		IsRegularParam:    integer(m["is_regular_param"]),
		SortOrder:         integer(m["sort_order"]),
	}
}

func standards(v any) string {
	list, ok := v.([]any)
	if !ok {
		return scalar(v)
	}
	out := make([]paramtable.Standard, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case map[string]any:
			out = append(out, paramtable.Standard{
				Name: scalar(s["standard_name"]),
				Code: scalar(s["standard_code"]),
			})
		default:
			out = append(out, paramtable.Standard{Name: scalar(s)})
		}
	}
	return paramtable.JoinStandards(out)
}

func templateCode(m map[string]any) string {
	if code := scalar(m["template_code"]); code != "" {
		return code
	}
	if t, ok := m["template"].(map[string]any); ok {
		return scalar(t["template_code"])
	}
	return ""
}

// scalar renders a decoded YAML scalar as text. Missing values become "".
func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// integer converts booleans, numbers and numeric strings. Anything else is 0.
func integer(v any) int {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case int:
		return x
	case int64:
		return int(x)
	case uint64:
		if x > math.MaxInt {
			return math.MaxInt
		}
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
