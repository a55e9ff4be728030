package domain

import "strings"

// NormalizeLanguage lowercases a language tag and drops any region suffix,
// so "pt-BR" and "pt_br" both become "pt".
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
