package whatsapp

import (
	"net/url"
	"strings"
)

// BuildLink produces a WhatsApp deep link that pre-fills the compose screen
// for the given number. A leading '+' is stripped and the message is
// percent-encoded. This performs no network I/O and cannot confirm
// delivery: success means a syntactically valid link was produced.
func BuildLink(phoneNumber, message string) string {
	digits := strings.TrimPrefix(phoneNumber, "+")

	// QueryEscape uses '+' for spaces; wa.me expects percent encoding.
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")

	return "https://wa.me/" + digits + "?text=" + encoded
}
