package utils

import (
	"fmt"
	"regexp"
	"time"
)

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// TrimToLength shortens str to at most length characters, appending an
// ellipsis when anything was cut.
func TrimToLength(str string, length int) string {
	runes := []rune(str)
	if len(runes) <= length {
		return str
	}
	return string(runes[:length]) + "..."
}

// PostSlug builds the URL slug for a post from its title and identifier.
func PostSlug(id, title string) string {
	cleaned := slugPattern.ReplaceAllString(title, "_")
	if len(cleaned) > 20 {
		cleaned = cleaned[:20]
	}
	return fmt.Sprintf("%s_%s", cleaned, id)
}

// AgoDuration renders a timestamp as a coarse human-relative duration.
func AgoDuration(at, now time.Time) string {
	seconds := int64(now.Sub(at).Seconds())
	switch {
	case seconds < 60:
		return "a few moments ago"
	case seconds < 60*60:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 60*60*24:
		return fmt.Sprintf("%d hours ago", seconds/(60*60))
	case seconds < 60*60*24*7:
		return fmt.Sprintf("%d days ago", seconds/(60*60*24))
	case seconds < 60*60*24*30:
		return fmt.Sprintf("%d weeks ago", seconds/(60*60*24*7))
	case seconds < 60*60*24*365:
		return fmt.Sprintf("%d months ago", seconds/(60*60*24*30))
	default:
		return fmt.Sprintf("%d years ago", seconds/(60*60*24*365))
	}
}
