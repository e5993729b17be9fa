package status

import (
	"fmt"
)

// EntryFormatter defines how entry outcomes and progress are rendered
type EntryFormatter interface {
	// FormatEntry formats the outcome of one entry
	FormatEntry(info EntryInfo) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultEntryFormatter provides a default implementation of EntryFormatter
type DefaultEntryFormatter struct{}

// NewDefaultEntryFormatter creates a new DefaultEntryFormatter
func NewDefaultEntryFormatter() *DefaultEntryFormatter {
	return &DefaultEntryFormatter{}
}

// FormatEntry formats an entry outcome with emojis
func (f *DefaultEntryFormatter) FormatEntry(info EntryInfo) string {
	switch info.Status {
	case StatusModified:
		return fmt.Sprintf("📝 Rewrote %s (%d/%d spans, %d edits)", info.Name, info.SpansChanged, info.Spans, info.Edits)
	case StatusCleared:
		return fmt.Sprintf("🧹 Cleared %s (%d fields)", info.Name, info.Fields)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s", info.Name)
	default:
		return fmt.Sprintf("👍 Unchanged %s", info.Name)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultEntryFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultEntryFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
