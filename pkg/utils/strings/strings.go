package strings

import (
	"path"
	"strings"
)

// supply suffix if text has not.
//
//	SupplySuffix("http://trainer:8000", "/")   // -> "http://trainer:8000/"
//	SupplySuffix("http://trainer:8000/", "/")  // -> "http://trainer:8000/"
func SupplySuffix(text, suffix string) string {
	if strings.HasSuffix(text, suffix) {
		return text
	}
	return text + suffix
}

// BaseName returns the last element of a client-supplied file name.
//
// Both of "/" and "\" are treated as separators, and
// "", "." and ".." are replaced with "unnamed".
func BaseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	b := path.Base(strings.TrimSpace(name))
	switch b {
	case "", ".", "..", "/":
		return "unnamed"
	}
	return b
}

// Ext returns the extension of the file name in lower case, without the leading dot.
//
// If name has no extension, it returns "".
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(BaseName(name)), "."))
}
