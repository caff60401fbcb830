// Package mentions implements DevLink's inline mention pipeline: parsing the
// private mention markup out of post/comment text, resolving handles against
// the user directory, and fanning out mention notifications.
package mentions

import (
	"regexp"
	"strings"
)

// Delim is the stored mention delimiter: three private-use codepoints that no
// input method produces, so it can never collide with user-typed text. The
// public-facing "@" trigger is a client affordance only; clients translate
// "@handle" to Delim+handle+Delim on submit and the raw "@" form is never
// stored.
const Delim = "\ue000\ue000\ue000"

var (
	markupRegex  = regexp.MustCompile(regexp.QuoteMeta(Delim) + `([\w-]+)` + regexp.QuoteMeta(Delim))
	triggerRegex = regexp.MustCompile(`@([\w-]+)`)
)

// ExtractHandles scans stored text for well-formed mention markup and returns
// the distinct handles, lowercased, in first-seen order. Markup missing its
// closing delimiter simply fails to match; it is ordinary text, not an error.
func ExtractHandles(text string) []string {
	matches := markupRegex.FindAllStringSubmatch(text, -1)

	seen := make(map[string]bool)
	var handles []string
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		handle := strings.ToLower(match[1])
		if !seen[handle] {
			seen[handle] = true
			handles = append(handles, handle)
		}
	}

	return handles
}

// StoreMarkup converts the client-side "@handle" trigger form into stored
// markup. Servers normally receive text already in markup form; this is the
// submit-time transform the input widget applies.
func StoreMarkup(text string) string {
	return triggerRegex.ReplaceAllString(text, Delim+"$1"+Delim)
}

// RenderDisplay converts stored markup back into the human-facing "@handle"
// form. The handle rendered is the one captured at authoring time; no live
// directory validation happens here, so renamed or deleted accounts still
// render with their historical handle.
func RenderDisplay(text string) string {
	return markupRegex.ReplaceAllString(text, "@$1")
}

// ContainsMarkup reports whether text carries at least one well-formed mention.
func ContainsMarkup(text string) bool {
	return markupRegex.MatchString(text)
}
