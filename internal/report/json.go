package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kbvlyon/visitsync/internal/model"
)

// WriteJSON writes s in the import file format, indented. The output can be
// imported back unchanged.
func WriteJSON(w io.Writer, s *model.Snapshot) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
