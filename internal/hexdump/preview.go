package hexdump

import (
	"fmt"
	"strings"
)

// PreviewLimit is the number of leading bytes rendered by Preview.
const PreviewLimit = 24

// Preview renders the first PreviewLimit bytes of b as uppercase hex pairs.
// Pairs are separated by a single space inside a 4-byte group and by two
// spaces between groups. Longer buffers end with " ... +N bytes".
func Preview(b []byte) string {
	limit := min(len(b), PreviewLimit)

	var sb strings.Builder
	sb.Grow(limit * 3)
	for i := 0; i < limit; i++ {
		if i != 0 {
			if i%4 == 0 {
				sb.WriteString("  ")
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "%02X", b[i])
	}
	if limit < len(b) {
		fmt.Fprintf(&sb, " ... +%d bytes", len(b)-limit)
	}
	return sb.String()
}
