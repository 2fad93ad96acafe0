// Package logview classifies raw log lines from the push channel into
// presentation tags. Classification is a pure function of the text;
// the server carries no separate severity field, so the vocabulary
// lives entirely in the markers the bot loop embeds in its messages.
package logview

import "strings"

// Tag is the presentation class of a log line.
type Tag int

const (
	TagNeutral Tag = iota
	TagError
	TagSuccess
	TagPending
	TagSystem
)

func (t Tag) String() string {
	switch t {
	case TagError:
		return "error"
	case TagSuccess:
		return "success"
	case TagPending:
		return "pending"
	case TagSystem:
		return "system"
	default:
		return "neutral"
	}
}

// Classify tags a raw event line by its embedded markers. The order
// mirrors the original panel: error beats success beats pending beats
// system, and anything unmarked is neutral.
func Classify(line string) Tag {
	switch {
	case strings.Contains(line, "🔴"):
		return TagError
	case strings.Contains(line, "🟢"), strings.Contains(line, "Success"):
		return TagSuccess
	case strings.Contains(line, "⏳"):
		return TagPending
	case strings.Contains(line, "⚙️"), strings.Contains(line, "System"):
		return TagSystem
	default:
		return TagNeutral
	}
}
