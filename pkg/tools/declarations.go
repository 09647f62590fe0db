// Package tools applies model-requested tool invocations to user memory
// and acknowledges every one of them back to the session.
package tools

import "github.com/aura-assist/aura/pkg/live"

// Tool names the model may invoke.
const (
	NameSaveLocation        = "save_location"
	NameAddPerson           = "add_person"
	NameAddEmergencyContact = "add_emergency_contact"
	NameCallContact         = "call_contact"
)

// Declarations returns the callable tool schema announced at connect time.
func Declarations() []live.FunctionDeclaration {
	str := func(desc string) *live.Schema {
		s := &live.Schema{Type: "STRING"}
		if desc != "" {
			s.Description = desc
		}
		return s
	}
	return []live.FunctionDeclaration{
		{
			Name:        NameSaveLocation,
			Description: "Saves or updates a location/address to user memory.",
			Parameters: &live.Schema{
				Type: "OBJECT",
				Properties: map[string]*live.Schema{
					"name":        str(""),
					"description": str(""),
				},
				Required: []string{"name", "description"},
			},
		},
		{
			Name:        NameAddPerson,
			Description: "Saves or updates a person profile.",
			Parameters: &live.Schema{
				Type: "OBJECT",
				Properties: map[string]*live.Schema{
					"name":         str(""),
					"relationship": str(""),
				},
				Required: []string{"name", "relationship"},
			},
		},
		{
			Name:        NameAddEmergencyContact,
			Description: "Saves or updates an emergency contact.",
			Parameters: &live.Schema{
				Type: "OBJECT",
				Properties: map[string]*live.Schema{
					"name":  str(""),
					"phone": str(""),
				},
				Required: []string{"name", "phone"},
			},
		},
		{
			Name:        NameCallContact,
			Description: "Initiates a phone call to a saved contact.",
			Parameters: &live.Schema{
				Type: "OBJECT",
				Properties: map[string]*live.Schema{
					"name":  str(""),
					"phone": str(""),
				},
				Required: []string{"name", "phone"},
			},
		},
	}
}
