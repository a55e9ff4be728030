package detector

// markerLanguages is the canonical iteration order. Ties resolve to the earlier entry.
var markerLanguages = []string{"en", "fr", "es", "de", "it", "pt", "nl", "ru", "zh", "ja", "ko", "ar", "hi"}

var markerWords = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "that", "for"},
	"fr": {"le", "la", "et", "des", "les", "en", "du"},
	"es": {"el", "la", "que", "de", "y", "en", "los"},
	"de": {"der", "die", "und", "in", "den", "von", "zu"},
	"it": {"il", "la", "che", "di", "e", "per", "un"},
	"pt": {"o", "a", "de", "que", "e", "do", "da"},
	"nl": {"de", "het", "een", "in", "van", "en", "voor"},
	"ru": {"и", "в", "на", "что", "с", "по", "не"},
	"zh": {"的", "是", "了", "在", "和", "有", "个"},
	"ja": {"の", "に", "は", "を", "た", "が", "で"},
	"ko": {"의", "에", "을", "를", "이", "가", "는"},
	"ar": {"و", "في", "من", "على", "إلى", "أن", "عن"},
	"hi": {"के", "में", "है", "की", "और", "का", "को"},
}

// supportedLanguages lists the language codes model loaders accept.
var supportedLanguages = []string{"en", "de", "fr", "es", "it", "zh", "ja", "ko", "ru", "pt", "nl", "ar", "hi", "tr", "pl", "vi", "th"}

// SupportedLanguages returns the language codes model variants exist for.
func SupportedLanguages() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// IsSupported reports whether code is in SupportedLanguages.
func IsSupported(code string) bool {
	for _, l := range supportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}
