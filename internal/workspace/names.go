package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const (
	// Extension is the file extension of stored documents.
	Extension = ".lua"

	// DefaultTitle names the document created for an empty workspace.
	DefaultTitle = "untitled.lua"

	// DefaultContent is the content of that document.
	DefaultContent = "-- New File\n"

	maxTitleLen = 100
)

// SanitizeTitle turns a document title into a safe file name ending in
// ".lua". Characters other than letters, digits, space, '_' and '-' become
// '_', whitespace runs collapse to one space, and the name is capped at 100
// characters. An empty result becomes "untitled.lua".
func SanitizeTitle(title string) string {
	name := strings.TrimSpace(title)
	if strings.HasSuffix(strings.ToLower(name), Extension) {
		name = name[:len(name)-len(Extension)]
	}

	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
	name = strings.Join(strings.Fields(name), " ")

	if r := []rune(name); len(r) > maxTitleLen {
		name = strings.TrimSpace(string(r[:maxTitleLen]))
	}
	if name == "" {
		return DefaultTitle
	}
	return name + Extension
}

// TabID derives the id of a stored document that has no recorded id.
func TabID(workspaceID, title string) string {
	sum := sha256.Sum256([]byte(workspaceID + "_" + title))
	return hex.EncodeToString(sum[:])
}
