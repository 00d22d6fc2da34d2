package sfv

// Character classes shared by the parser and the serializer. Both sides call
// the same predicates so that anything the serializer emits is accepted by the
// parser and vice versa.

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isLCAlpha(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// isTChar reports whether c is an HTTP token character (RFC 9110 tchar).
func isTChar(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

func isKeyStart(c byte) bool {
	return isLCAlpha(c) || c == '*'
}

func isKeyChar(c byte) bool {
	return isLCAlpha(c) || isDigit(c) || c == '_' || c == '-' || c == '.' || c == '*'
}

func isTokenStart(c byte) bool {
	return isAlpha(c) || c == '*'
}

func isTokenChar(c byte) bool {
	return isTChar(c) || c == ':' || c == '/'
}

// isVisibleASCII covers SP through '~', the bytes allowed inside a string.
func isVisibleASCII(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

func isOWS(c byte) bool {
	return c == ' ' || c == '\t'
}

func isBase64Char(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '+' || c == '/' || c == '='
}

// ============================================================
// Exported checks
// ============================================================

// ValidKey reports whether s can be used as a parameter or dictionary key.
func ValidKey(s string) bool {
	if s == "" || !isKeyStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isKeyChar(s[i]) {
			return false
		}
	}
	return true
}

// ValidToken reports whether s can be serialized as a token.
func ValidToken(s string) bool {
	if s == "" || !isTokenStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

// ValidString reports whether s can be serialized as a string.
func ValidString(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isVisibleASCII(s[i]) {
			return false
		}
	}
	return true
}
