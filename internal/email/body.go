package email

import (
	"fmt"
	"strings"
	"time"
)

// BodyField is one labeled value rendered into the HTML body. Values must
// already be HTML-escaped; the validator escapes every field before any
// check runs.
type BodyField struct {
	Label string
	Value string
}

const bodyStyle = `body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #f4f4f4; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
.field { margin-bottom: 15px; }
.label { font-weight: bold; color: #2563eb; }
.value { margin-top: 5px; }`

// RenderBody produces the fixed HTML template for a submission: a heading,
// one block per field, and a list of attachment display names labeled by
// slot.
func RenderBody(title string, fields, images []BodyField) string {
	var sb strings.Builder

	sb.WriteString("<html>\n<head>\n<style>\n")
	sb.WriteString(bodyStyle)
	sb.WriteString("\n</style>\n</head>\n<body>\n<div class='container'>\n")

	sb.WriteString("<div class='header'>\n")
	fmt.Fprintf(&sb, "<h2>%s</h2>\n", title)
	fmt.Fprintf(&sb, "<p>Received on: %s</p>\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	sb.WriteString("</div>\n")

	for _, f := range fields {
		sb.WriteString("<div class='field'>\n")
		fmt.Fprintf(&sb, "<div class='label'>%s:</div>\n", f.Label)
		fmt.Fprintf(&sb, "<div class='value'>%s</div>\n", f.Value)
		sb.WriteString("</div>\n")
	}

	sb.WriteString("<div class='field'>\n<div class='label'>Attached Images:</div>\n<div class='value'>\n<ul>\n")
	for _, img := range images {
		fmt.Fprintf(&sb, "<li>%s: %s</li>\n", img.Label, img.Value)
	}
	sb.WriteString("</ul>\n</div>\n</div>\n")

	sb.WriteString("</div>\n</body>\n</html>")
	return sb.String()
}
