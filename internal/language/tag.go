package language

import (
	"fmt"
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

func parseTag(tag string) (textlang.Tag, error) {
	return textlang.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// ValidTag reports whether tag is a well-formed BCP 47 tag with known
// subtags, e.g. "en", "en-US", "yue-HK".
func ValidTag(tag string) bool {
	_, err := parseTag(tag)
	return err == nil
}

// TagLabel returns a human-readable label for a recognition language tag.
// Example: "es" -> "Spanish (es)", "en-US" -> "American English (en-US)".
func TagLabel(tag string) string {
	if tag == "" {
		return ""
	}

	t, err := parseTag(tag)
	if err != nil {
		return fmt.Sprintf("language '%s'", tag)
	}

	name := display.English.Tags().Name(t)
	if name == "" || strings.EqualFold(name, tag) {
		return fmt.Sprintf("language '%s'", tag)
	}

	return fmt.Sprintf("%s (%s)", name, tag)
}
