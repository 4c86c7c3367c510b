package language

import "strings"

// Language is a selectable translation target
type Language struct {
	Code       string // ISO 639-1 code (e.g., "en", "es", "zh")
	Name       string // English name (e.g., "English", "Spanish")
	NativeName string // Native name (e.g., "English", "Español", "中文")
}

// None disables translation
var None = Language{Code: "", Name: "None", NativeName: ""}

// targets is the fixed list of translation targets
var targets = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska"},
	{Code: "pl", Name: "Polish", NativeName: "Polski"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
}

// codeIndex maps language codes to their Language structs for fast lookup
var codeIndex map[string]Language

func init() {
	codeIndex = make(map[string]Language, len(targets)+1)
	codeIndex[""] = None
	for _, lang := range targets {
		codeIndex[lang.Code] = lang
	}
}

// FromCode returns the Language for the given code.
// Returns None if code is not found.
func FromCode(code string) Language {
	if lang, ok := codeIndex[code]; ok {
		return lang
	}
	return None
}

// List returns all translation targets (excluding None)
func List() []Language {
	result := make([]Language, len(targets))
	copy(result, targets)
	return result
}

// Codes returns all target codes (excluding empty string for none)
func Codes() []string {
	codes := make([]string, len(targets))
	for i, lang := range targets {
		codes[i] = lang.Code
	}
	return codes
}

// IsValidCode returns true if the code is a target (including empty for none)
func IsValidCode(code string) bool {
	_, ok := codeIndex[code]
	return ok
}

// ParseTarget accepts a code, "none" or "off" and returns the canonical code.
func ParseTarget(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" || s == "off" {
		return "", true
	}
	if !IsValidCode(s) {
		return "", false
	}
	return s, true
}

// Base reduces a BCP 47 tag like "en-US" to its primary subtag "en".
func Base(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// Label renders a target for status output: the code, or "none".
func Label(code string) string {
	if code == "" {
		return "none"
	}
	return code
}
