// Package export renders responses into text output formats. Binary formats
// (spreadsheets, documents, PDF) are delegated to external collaborators and
// are not part of this service.
package export

import (
	"fmt"
	"strings"

	"github.com/formworks/formworks/internal/models"
)

// WhatsAppMessage renders a response as a WhatsApp-ready text message. When
// the form carries a message template, {Label} placeholders are substituted
// with submitted values; otherwise a default "Label: value" listing is built
// from the form's field order.
func WhatsAppMessage(form *models.Form, response *models.Response) string {
	if form.WhatsappFormat != "" {
		msg := form.WhatsappFormat
		for _, field := range form.Fields {
			placeholder := "{" + field.Label + "}"
			msg = strings.ReplaceAll(msg, placeholder, valueString(response.Data[field.Label]))
		}
		return msg
	}

	var b strings.Builder
	b.WriteString("*" + form.Title + "*\n")
	for _, field := range form.Fields {
		value, ok := response.Data[field.Label]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", field.Label, valueString(value))
	}
	return strings.TrimRight(b.String(), "\n")
}

// valueString formats a submitted value for text output.
func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, valueString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
