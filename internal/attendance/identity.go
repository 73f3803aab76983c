package attendance

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdentity trims a label and puts it in NFC form so the same name
// typed on different keyboards dedups to one attendance line.
func NormalizeIdentity(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
