package contact

import (
	"errors"
	"regexp"
)

// Kind classifies a contact string.
type Kind int

const (
	KindInvalid Kind = iota
	KindPhone
	KindEmail
)

// ErrFormatInvalid indicates the contact is neither a phone number nor an email address.
var ErrFormatInvalid = errors.New("contact is not a valid phone number or email address")

var (
	// phone numbers carry an international dialing code, e.g. "+86 18888888888"
	phoneRe = regexp.MustCompile(`^\+\d{1,3}\s\d{10,15}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

// Classify reports whether the contact is a phone number, an email
// address, or neither. It has no side effects; callers must stop on
// KindInvalid before generating or storing anything for the contact.
func Classify(s string) Kind {
	switch {
	case phoneRe.MatchString(s):
		return KindPhone
	case emailRe.MatchString(s):
		return KindEmail
	default:
		return KindInvalid
	}
}

func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	case KindEmail:
		return "email"
	default:
		return "invalid"
	}
}
