package export

import (
	"fmt"
	"strings"

	"github.com/formworks/formworks/internal/models"
)

// ConfirmationText renders the post-submission confirmation for a response in
// the form's configured display mode. Table mode lists "Label: value" lines in
// field order; paragraph mode substitutes {Label} placeholders into the form's
// confirmation template.
func ConfirmationText(form *models.Form, response *models.Response) string {
	if form.ConfirmationStyle == models.ConfirmationParagraph && form.ConfirmationText != "" {
		text := form.ConfirmationText
		for _, field := range form.Fields {
			placeholder := "{" + field.Label + "}"
			text = strings.ReplaceAll(text, placeholder, valueString(response.Data[field.Label]))
		}
		return text
	}

	var b strings.Builder
	for _, field := range form.Fields {
		value, ok := response.Data[field.Label]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", field.Label, valueString(value))
	}
	return strings.TrimRight(b.String(), "\n")
}
