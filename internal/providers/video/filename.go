package video

import (
	"strings"
	"time"
)

const (
	filenamePrefix    = "sora"
	filenameExt       = ".mp4"
	filenameTimestamp = "02Jan2006_150405"
	maxSafeNameRunes  = 30
	fallbackSafeName  = "video"
)

// DeriveFilename builds the output name for a prompt generated at now:
// sora_<ddMMMyyyy_HHmmss>_<safe prompt prefix>.mp4
func DeriveFilename(now time.Time, prompt string) string {
	return filenamePrefix + "_" + now.Format(filenameTimestamp) + "_" + SafeName(prompt, maxSafeNameRunes) + filenameExt
}

// SafeName keeps the first maxRunes runes of the trimmed prompt and replaces
// anything unsafe in a file name with '_'. Leading and trailing underscores
// are dropped, so "sunset." gives "sunset" and not "sunset_". This differs
// from plain replacement on purpose: a prompt of only punctuation must
// collapse to empty. An empty result becomes "video".
func SafeName(prompt string, maxRunes int) string {
	prompt = strings.TrimSpace(prompt)
	if maxRunes > 0 {
		if r := []rune(prompt); len(r) > maxRunes {
			prompt = string(r[:maxRunes])
		}
	}
	safe := strings.Trim(strings.Map(replaceUnsafe, prompt), "_")
	if safe == "" {
		return fallbackSafeName
	}
	return safe
}

func replaceUnsafe(r rune) rune {
	if r < 0x20 || r == 0x7f {
		return '_'
	}
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*',
		' ', ',', '.', ';':
		return '_'
	}
	return r
}

