package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record is one row of named fields, in the order the server returned them
type Record struct {
	Keys   []string
	Values []any
}

// Get returns the value stored under key
func (r Record) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// String renders the record on one line, e.g. {dept: Node[Department] {"name":"IT"}}
func (r Record) String() string {
	parts := make([]string, 0, len(r.Keys))
	for i, key := range r.Keys {
		var val any
		if i < len(r.Values) {
			val = r.Values[i]
		}
		parts = append(parts, key+": "+FormatValue(val))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fromDriver(records []*neo4j.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		out = append(out, Record{Keys: rec.Keys, Values: rec.Values})
	}
	return out
}

// FormatRecords renders a result set as a numbered block, one field per line
func FormatRecords(records []Record) string {
	if len(records) == 0 {
		return "Query executed successfully but returned no rows"
	}

	var sb strings.Builder
	sb.WriteString("Results:\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for i, record := range records {
		sb.WriteString(fmt.Sprintf("Row %d:\n", i+1))
		for j, key := range record.Keys {
			if j >= len(record.Values) {
				sb.WriteString(fmt.Sprintf("  %s: <not found>\n", key))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", key, FormatValue(record.Values[j])))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatValue renders a driver value for humans
func FormatValue(val any) string {
	if val == nil {
		return "null"
	}

	switch v := val.(type) {
	case neo4j.Node:
		return fmt.Sprintf("Node%v %s", v.Labels, propsJSON(v.Props))
	case neo4j.Relationship:
		return fmt.Sprintf("Relationship[%s] %s", v.Type, propsJSON(v.Props))
	case neo4j.Path:
		items := make([]string, 0, len(v.Nodes))
		for _, n := range v.Nodes {
			items = append(items, FormatValue(n))
		}
		return fmt.Sprintf("Path(%d hops) [%s]", len(v.Relationships), strings.Join(items, " -> "))
	case []any:
		if len(v) == 0 {
			return "[]"
		}
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, FormatValue(item))
		}
		return fmt.Sprintf("[%s]", strings.Join(items, ", "))
	case map[string]any:
		return propsJSON(v)
	case string:
		return fmt.Sprintf("%q", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case fmt.Stringer:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func propsJSON(props map[string]any) string {
	if len(props) == 0 {
		return "{}"
	}
	b, err := json.Marshal(props)
	if err != nil {
		return fmt.Sprintf("%v", props)
	}
	return string(b)
}
