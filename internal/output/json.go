package output

import (
	"encoding/json"
	"io"
)

// RenderJSON writes v as indented JSON. HTML escaping is off so operators
// such as "<->" in query text stay readable.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
