package tutor

import (
	"fmt"
	"strings"

	"github.com/proglot/tutor/internal/transcript"
)

// FormatExport renders the full on-disk transcript as a plain-text block the
// student can paste into an external chat tool when the API path is
// unavailable. Always fed the unwindowed transcript so the exported context
// is maximal. One line per message, first text part only.
func FormatExport(full transcript.Transcript, languageLabel string) string {
	var b strings.Builder
	b.WriteString("SYSTEM INSTRUCTION:\n")
	b.WriteString(SystemInstruction(languageLabel))
	b.WriteString("\n\nCHAT HISTORY:\n")
	for _, m := range full {
		role := "Student"
		if m.Role == transcript.RoleModel {
			role = "Model"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Text())
	}
	b.WriteString("\n\n(Please continue from here)")
	return b.String()
}
