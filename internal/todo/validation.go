package todo

// ValidateContent only rejects the empty string. Whitespace is kept as typed.
func ValidateContent(content string) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyContent
	}
	return content, nil
}
