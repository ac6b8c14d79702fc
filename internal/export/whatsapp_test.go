package export

import (
	"testing"

	"github.com/formworks/formworks/internal/models"
	"gorm.io/datatypes"
)

func testForm() *models.Form {
	return &models.Form{
		ID:    "form-1",
		Title: "Catering Order",
		Fields: []models.FormField{
			{ID: "f1", Type: models.FieldText, Label: "Name"},
			{ID: "f2", Type: models.FieldNumber, Label: "Guests"},
			{ID: "f3", Type: models.FieldCheckbox, Label: "Vegetarian"},
		},
	}
}

func TestWhatsAppMessage_DefaultListing(t *testing.T) {
	form := testForm()
	response := &models.Response{
		Data: datatypes.JSONMap{
			"Name":       "Ada",
			"Guests":     float64(12),
			"Vegetarian": true,
		},
	}

	got := WhatsAppMessage(form, response)
	want := "*Catering Order*\nName: Ada\nGuests: 12\nVegetarian: Yes"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWhatsAppMessage_Template(t *testing.T) {
	form := testForm()
	form.WhatsappFormat = "Order from {Name} for {Guests} guests"
	response := &models.Response{
		Data: datatypes.JSONMap{"Name": "Ada", "Guests": float64(12)},
	}

	got := WhatsAppMessage(form, response)
	if got != "Order from Ada for 12 guests" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWhatsAppMessage_SkipsAbsentFields(t *testing.T) {
	form := testForm()
	response := &models.Response{Data: datatypes.JSONMap{"Name": "Ada"}}

	got := WhatsAppMessage(form, response)
	if got != "*Catering Order*\nName: Ada" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestValueString_Lists(t *testing.T) {
	got := valueString([]any{"a", float64(2), true})
	if got != "a, 2, Yes" {
		t.Fatalf("unexpected list rendering: %q", got)
	}
}
