package model

import "golang.org/x/text/language"

// Languages supported by the UI.
const (
	LangEnglish = "en"
	LangTurkish = "tr"
)

// noSuffixLabels maps a UI language to the label shown for the base model.
var noSuffixLabels = map[string]string{
	LangEnglish: "No suffix",
	LangTurkish: "Eksiz",
}

// CollationTag maps a UI language to the tag used for collation.
func CollationTag(lang string) language.Tag {
	if lang == LangTurkish {
		return language.Turkish
	}
	return language.English
}

// SuffixLabeler returns a function mapping suffix tags to display labels
// for the given language. Non-empty tags are shown as-is; the empty tag
// gets the localized "no suffix" label.
func SuffixLabeler(lang string) func(string) string {
	none, ok := noSuffixLabels[lang]
	if !ok {
		none = noSuffixLabels[LangEnglish]
	}
	return func(suffix string) string {
		if suffix == SuffixNone {
			return none
		}
		return suffix
	}
}
