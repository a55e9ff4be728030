package inference

import "fmt"

var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ru": "Russian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ar": "Arabic",
	"hi": "Hindi",
	"tr": "Turkish",
	"pl": "Polish",
	"vi": "Vietnamese",
	"th": "Thai",
}

// LanguageName returns the English name of a language code, or the code itself.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// summaryInstructions is the system prompt used by chat-style backends.
func summaryInstructions(language string, minLength, maxLength int) string {
	return fmt.Sprintf(`Summarize the text provided by the user.

Rules:
- Write the summary in %s.
- Use between %d and %d tokens.
- Keep names, numbers and dates that matter.
- Output only the summary as plain prose, no headings or lists.`, LanguageName(language), minLength, maxLength)
}
