package capture

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
)

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
	labelTagPattern = regexp.MustCompile(`\s#([\w-]+)\s*$`)
)

// Draft is a note derived from a message, before labels are resolved.
type Draft struct {
	Note      notes.NewNote
	LabelName string
}

// DraftFromMessage maps a message to a note. A leading "!" in the
// subject or the \Flagged flag marks it priority, a trailing "#name"
// names a label, and a body made only of bullet lines becomes a checklist.
func DraftFromMessage(m Message) Draft {
	subject := strings.TrimSpace(m.Envelope.Subject)
	priority := m.Flagged()
	if strings.HasPrefix(subject, "!") {
		priority = true
		subject = strings.TrimSpace(strings.TrimLeft(subject, "!"))
	}

	var label string
	if match := labelTagPattern.FindStringSubmatch(" " + subject); match != nil {
		label = match[1]
		subject = strings.TrimSpace(strings.TrimSuffix(subject, "#"+label))
	}
	if subject == "" {
		subject = "(no subject)"
	}

	body := m.TextBody
	if strings.TrimSpace(body) == "" && m.HTMLBody != "" {
		body = stripHTML(m.HTMLBody)
	}
	body = trimSignature(strings.ReplaceAll(body, "\r\n", "\n"))

	d := Draft{
		Note: notes.NewNote{
			Title:      subject,
			IsPriority: priority,
		},
		LabelName: label,
	}
	if isChecklist(body) {
		d.Note.IsList = true
		d.Note.Items = notes.ItemsFromText(body)
	} else {
		d.Note.Description = strings.TrimSpace(body)
	}
	return d
}

// isChecklist reports whether every non-blank line is a bullet or a
// task marker.
func isChecklist(body string) bool {
	lines := 0
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines++
		if !isBullet(line) {
			return false
		}
	}
	return lines > 0
}

func isBullet(line string) bool {
	for _, p := range []string{"- ", "* ", "+ ", "[ ]", "[x]", "[X]"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// trimSignature drops everything after a "-- " signature delimiter.
func trimSignature(body string) string {
	if i := strings.Index(body, "\n-- \n"); i >= 0 {
		return body[:i]
	}
	if strings.HasPrefix(body, "-- \n") {
		return ""
	}
	return body
}

// stripHTML converts simple HTML into readable plain text.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{"<br>", "<br/>", "<br />", "</p>", "</div>"} {
		result = strings.ReplaceAll(result, tag, "\n")
	}
	result = strings.ReplaceAll(result, "<li>", "- ")
	result = strings.ReplaceAll(result, "</li>", "\n")
	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}

// matchLabel finds a label by name, case-insensitively.
func matchLabel(labels []model.Label, name string) *string {
	if name == "" {
		return nil
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) {
			id := l.ID
			return &id
		}
	}
	return nil
}

func uidString(uid uint32) string {
	return strconv.FormatUint(uint64(uid), 10)
}
