package storage

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	windowsDeviceNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

const fallbackFilename = "image"

// SecureFilename reduces a client supplied file name to a flat ASCII name that is
// safe to use on any filesystem. Directory components and traversal sequences are
// removed. An input that sanitizes to nothing yields "image".
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			ascii.WriteRune(r)
		}
	}

	flat := strings.NewReplacer("/", " ", `\`, " ").Replace(ascii.String())
	flat = strings.Join(strings.Fields(flat), "_")
	flat = unsafeFilenameChars.ReplaceAllString(flat, "")
	flat = strings.Trim(flat, "._")

	if flat == "" {
		return fallbackFilename
	}

	stem := strings.ToUpper(strings.SplitN(flat, ".", 2)[0])
	if _, reserved := windowsDeviceNames[stem]; reserved {
		flat = "_" + flat
	}
	return flat
}

// UniqueName prefixes the sanitized file name with a random 32 character hex token.
func UniqueName(original string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token + "_" + SecureFilename(original)
}
