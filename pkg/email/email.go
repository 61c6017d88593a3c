package email

import (
	"net/mail"
	"strings"
	"unicode"
)

// IsValid reports whether s is a single bare address such as user@example.com.
func IsValid(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.IndexByte(s, '@')+1:], ".")
}

// DisplayName derives a human-friendly name from the local part of an email
// address, e.g. "jane.doe@acme.io" becomes "Jane Doe".
func DisplayName(email string) string {
	first, last := DeriveNameFromEmail(email)
	if last == "User" && first != "User" {
		return first
	}
	return first + " " + last
}

func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

// Mask hides most of the local part: "jane.doe@acme.io" becomes "j*******@acme.io".
func Mask(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return email
	}
	local := []rune(email[:at])
	return string(local[0]) + strings.Repeat("*", len(local)-1) + email[at:]
}

// MaskPhone keeps only the last four digits visible.
func MaskPhone(phone string) string {
	runes := []rune(phone)
	digits := 0
	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsDigit(runes[i]) {
			continue
		}
		digits++
		if digits > 4 {
			runes[i] = '*'
		}
	}
	return string(runes)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
