package render

import (
	"strings"

	"github.com/chatglass/chatglass/pkg/resolve"
)

// Text renders runs as unstyled plain text: every run's content in
// paint order, root runs joined by newlines. Obfuscated runs
// contribute their current scrambled value; hover content is not
// included.
func Text(runs []*resolve.Run) string {
	var b strings.Builder
	for i, root := range runs {
		if i > 0 {
			b.WriteByte('\n')
		}
		root.Walk(func(r *resolve.Run) { b.WriteString(r.Content()) })
	}
	return b.String()
}
