package tikrelay

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NamingPolicy controls how download filenames are built. The zero value
// is not useful; use DefaultNamingPolicy as a base.
type NamingPolicy struct {
	// MaxTitleLen caps the sanitized title, in runes.
	MaxTitleLen int
	// Fallback replaces a title that sanitizes down to nothing.
	Fallback string
	// Brand, when set, switches filenames from <author>_<title>_<id> to
	// <brand>_<id>.
	Brand string
}

// DefaultNamingPolicy matches the upstream relay convention.
var DefaultNamingPolicy = NamingPolicy{
	MaxTitleLen: 100,
	Fallback:    "tiktok",
}

const filenameDisallowed = `<>:"/\|?*`

// SanitizeTitle makes a video title safe for use in a filename: NFKC
// normalization, disallowed and control characters replaced by
// underscores, whitespace and separator runs collapsed, rune-safe
// truncation, and a fallback when nothing survives.
func (p NamingPolicy) SanitizeTitle(title string) string {
	title = norm.NFKC.String(title)

	mapped := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(filenameDisallowed, r):
			return '_'
		case unicode.IsControl(r):
			return '_'
		case unicode.IsSpace(r):
			return '_'
		}
		return r
	}, title)

	// Collapse separator runs and trim the edges.
	var b strings.Builder
	prevSep := true
	for _, r := range mapped {
		if r == '_' {
			if prevSep {
				continue
			}
			prevSep = true
		} else {
			prevSep = false
		}
		b.WriteRune(r)
	}
	clean := strings.TrimRight(b.String(), "_")

	if runes := []rune(clean); len(runes) > p.MaxTitleLen {
		clean = strings.TrimRight(string(runes[:p.MaxTitleLen]), "_")
	}

	if clean == "" {
		return p.Fallback
	}
	return clean
}

// Filename builds the attachment filename for a download. qualifier is an
// optional discriminator appended before the extension (the thumbnail
// quality); ext goes without the dot.
func (p NamingPolicy) Filename(meta VideoMetadata, qualifier, ext string) string {
	id := meta.ID
	if id == "" {
		id = "unknown"
	}

	var base string
	if p.Brand != "" {
		base = fmt.Sprintf("%s_%s", p.SanitizeTitle(p.Brand), id)
	} else {
		author := meta.Author.Username
		if author == "" {
			author = "unknown"
		}
		base = fmt.Sprintf("%s_%s_%s", p.SanitizeTitle(author), p.SanitizeTitle(meta.Title), id)
	}

	if qualifier != "" {
		base += "_" + qualifier
	}
	return base + "." + ext
}
