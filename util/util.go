package util

func IsNumber(c rune) bool {
	return c >= '0' && c <= '9'
}

// IsNumericChar reports whether c can appear in a numeric literal, which
// allows at most one '.' checked later by the number parser.
func IsNumericChar(c rune) bool {
	return IsNumber(c) || c == '.'
}

func IsUnderScore(c rune) bool {
	return c == '_'
}

func IsLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func IsLetterOrUnderscore(c rune) bool {
	return IsLetter(c) || IsUnderScore(c)
}
