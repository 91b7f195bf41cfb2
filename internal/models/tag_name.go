package models

import "regexp"

const MaxTagNameLength = 35

var tagNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+#.\-]*$`)

// ValidTagName reports whether name is a lower-case tag such as "c#", "asp.net-core" or "c++".
func ValidTagName(name string) bool {
	return len(name) <= MaxTagNameLength && tagNamePattern.MatchString(name)
}
