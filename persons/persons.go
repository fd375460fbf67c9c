// Package persons resolves short contact codes to publisher contact records.
package persons

import "github.com/ehealth-suisse/i14y-transformer/models/i14y"

// Directory maps short names like "PGR" to contact records. Unknown keys
// resolve to the zero Contact, which serializes as an empty object.
type Directory struct {
	contacts map[string]i14y.Contact
}

// NewDirectory builds a Directory from short-name to email pairs.
func NewDirectory(emails map[string]string) *Directory {
	contacts := make(map[string]i14y.Contact, len(emails))
	for key, email := range emails {
		contacts[key] = i14y.Contact{Email: email}
	}
	return &Directory{contacts: contacts}
}

// Resolve returns the contact registered under key, or the zero Contact.
func (d *Directory) Resolve(key string) i14y.Contact {
	return d.contacts[key]
}
