package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Document is the serialized form of a record: every attribute, the
// formatted timestamps and the kind tag under AttrClass.
type Document map[string]any

// ToDocument serializes r. FromAttributes(r.Kind(), ToDocument(r)) rebuilds a
// record equal to r.
func ToDocument(r Record) Document {
	b := r.Base()
	attrs := r.attributes()

	doc := make(Document, len(b.Extra)+len(attrs)+4)
	for name, v := range b.Extra {
		doc[name] = v
	}
	for _, a := range attrs {
		doc[a.name] = *a.value
	}
	doc[AttrID] = b.ID
	doc[AttrCreatedAt] = FormatTime(b.CreatedAt)
	doc[AttrUpdatedAt] = FormatTime(b.UpdatedAt)
	doc[AttrClass] = r.Kind()
	return doc
}

// Kind returns the kind tag of the document, or "" when absent or not a
// string.
func (d Document) Kind() string {
	s, _ := d[AttrClass].(string)
	return s
}

// Render formats r for display as "[<Kind>] (<id>) {<attributes>}". The
// attribute mapping lists id, the timestamps, declared attributes in
// declaration order, then extra attributes sorted by name.
func Render(r Record) string {
	b := r.Base()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] (%s) {", r.Kind(), b.ID)
	writePair(&sb, AttrID, b.ID, true)
	writePair(&sb, AttrCreatedAt, FormatTime(b.CreatedAt), false)
	writePair(&sb, AttrUpdatedAt, FormatTime(b.UpdatedAt), false)
	for _, a := range r.attributes() {
		writePair(&sb, a.name, *a.value, false)
	}

	names := make([]string, 0, len(b.Extra))
	for name := range b.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writePair(&sb, name, b.Extra[name], false)
	}
	sb.WriteByte('}')
	return sb.String()
}

func writePair(sb *strings.Builder, name string, v any, first bool) {
	if !first {
		sb.WriteString(", ")
	}
	sb.WriteString(quote(name))
	sb.WriteString(": ")
	sb.WriteString(formatValue(v))
}

// formatValue renders strings single-quoted at every depth. Lists and
// objects use the same punctuation as the record itself, with object keys
// sorted; other scalars keep their JSON form.
func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case json.Number:
		return v.String()
	case nil:
		return "null"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = quote(name) + ": " + formatValue(v[name])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(out)
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
