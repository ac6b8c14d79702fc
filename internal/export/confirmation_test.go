package export

import (
	"testing"

	"github.com/formworks/formworks/internal/models"
	"gorm.io/datatypes"
)

func TestConfirmationText_TableMode(t *testing.T) {
	form := testForm()
	form.ConfirmationStyle = models.ConfirmationTable
	response := &models.Response{
		Data: datatypes.JSONMap{"Name": "Ada", "Guests": float64(3)},
	}

	got := ConfirmationText(form, response)
	if got != "Name: Ada\nGuests: 3" {
		t.Fatalf("unexpected confirmation: %q", got)
	}
}

func TestConfirmationText_ParagraphMode(t *testing.T) {
	form := testForm()
	form.ConfirmationStyle = models.ConfirmationParagraph
	form.ConfirmationText = "Thanks {Name}, see you with your {Guests} guests!"
	response := &models.Response{
		Data: datatypes.JSONMap{"Name": "Ada", "Guests": float64(3)},
	}

	got := ConfirmationText(form, response)
	if got != "Thanks Ada, see you with your 3 guests!" {
		t.Fatalf("unexpected confirmation: %q", got)
	}
}

func TestConfirmationText_ParagraphWithoutTemplateFallsBack(t *testing.T) {
	form := testForm()
	form.ConfirmationStyle = models.ConfirmationParagraph
	response := &models.Response{Data: datatypes.JSONMap{"Name": "Ada"}}

	got := ConfirmationText(form, response)
	if got != "Name: Ada" {
		t.Fatalf("unexpected confirmation: %q", got)
	}
}
