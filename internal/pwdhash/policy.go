package pwdhash

// Validate reports whether output is a well-formed derived password for
// params: exact length, only base64 alphabet characters, and the required
// character classes present.
func Validate(output string, params Params) bool {
	return validate(output, params)
}

func validate[T ~string | ~[]byte](s T, p Params) bool {
	if len(s) != p.Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !inAlphabet(s[i]) {
			return false
		}
	}
	if p.RequireLower && !containsClass(s, isLower) {
		return false
	}
	if p.RequireUpperOrDigit && !containsClass(s, isUpperOrDigit) {
		return false
	}
	return true
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isUpperOrDigit(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func inAlphabet(c byte) bool {
	return isLower(c) || isUpperOrDigit(c) || c == '+' || c == '/'
}

func containsClass[T ~string | ~[]byte](s T, class func(byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if class(s[i]) {
			return true
		}
	}
	return false
}

// soleIndex returns the index of the only byte in class, or -1 when there
// are none or several
func soleIndex(s []byte, class func(byte) bool) int {
	idx := -1
	for i, c := range s {
		if !class(c) {
			continue
		}
		if idx >= 0 {
			return -1
		}
		idx = i
	}
	return idx
}
