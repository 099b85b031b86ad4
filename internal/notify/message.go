package notify

import (
	"strings"

	"eventhub/internal/model"
)

// formatReminder renders the reminder text for an event. Emphasis uses
// Telegram HTML markers, passed through to the messenger verbatim.
func formatReminder(event *model.Event) string {
	var b strings.Builder

	b.WriteString("🎉 <b>Event reminder!</b>\n\n")
	b.WriteString("📅 <b>Event:</b> " + event.Name + "\n")
	b.WriteString("📍 <b>Where:</b> " + event.LocationName + "\n")
	b.WriteString("🕐 <b>When:</b> " + event.StartAt.Format("02.01.2006") +
		" at " + event.StartAt.Format("15:04") + "\n")
	if event.Description != "" {
		b.WriteString("📝 <b>Details:</b> " + event.Description + "\n")
	}
	b.WriteString("\n⏰ The event is starting soon!")

	return b.String()
}
