package notify

import "fmt"

// RenderMessage produces the user-facing subject and body for a notification
// type from its payload. Unknown types get a generic rendering so the
// dispatcher never drops a row over a missing template.
func RenderMessage(notifType string, payload map[string]any) (subject, body string) {
	str := func(key string) string {
		v, ok := payload[key]
		if !ok || v == nil {
			return "-"
		}
		return fmt.Sprintf("%v", v)
	}

	switch notifType {
	case "task_due_soon":
		subject = fmt.Sprintf("[Action needed] '%s' is due soon", str("title"))
		body = fmt.Sprintf(
			"Task '%s' for system '%s' is due on %s.\nPlease review and complete it to stay compliant.",
			str("title"), str("ai_system_name"), str("due_date"))

	case "incident_created":
		subject = fmt.Sprintf("[Incident] New incident opened (ID: %s)", str("incident_id"))
		body = fmt.Sprintf(
			"An incident was created (ID: %s). Severity: %s; Type: %s; Status: %s.\nSummary: %s.",
			str("incident_id"), str("severity"), str("type"), str("status"), str("summary"))

	case "incident_status_changed":
		subject = fmt.Sprintf("[Incident] Status changed for incident %s", str("incident_id"))
		body = fmt.Sprintf(
			"Incident %s status changed: %s -> %s.\nSeverity: %s; Type: %s.",
			str("incident_id"), str("old_status"), str("new_status"), str("severity"), str("type"))

	case "stale_evidence":
		subject = "[Evidence] Review overdue"
		body = fmt.Sprintf(
			"Evidence '%s' (%s) is overdue for review since %s.",
			str("document_name"), str("document_type"), str("review_due_at"))

	default:
		subject = fmt.Sprintf("[Notification] %s", notifType)
		body = fmt.Sprintf("Event of type %s occurred.", notifType)
	}

	return subject, body
}
