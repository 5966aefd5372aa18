package core

import "strings"

// tagSeparator joins tokens in cells like "Fire, Ice".
const tagSeparator = ", "

// tagStyles maps elemental and yes/no tokens to display colours.
var tagStyles = map[string]string{
	"Lightning": "yellow",
	"Fire":      "red",
	"Ice":       "lightblue",
	"Yes":       "green",
	"No":        "red",
	"Cannot":    "red",
}

// TagSegment is one piece of a colourised cell. Style is empty for plain text.
type TagSegment struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

// TagStyle returns the colour for a token.
func TagStyle(token string) (string, bool) {
	style, ok := tagStyles[token]
	return style, ok
}

// ColorizeTags splits text on ", " and attaches a style to known tokens.
// Separators are kept as unstyled segments, so joining every segment's Text
// gives back the input.
func ColorizeTags(text string) []TagSegment {
	parts := strings.Split(text, tagSeparator)
	segments := make([]TagSegment, 0, 2*len(parts)-1)
	for i, part := range parts {
		segments = append(segments, TagSegment{Text: part, Style: tagStyles[part]})
		if i < len(parts)-1 {
			segments = append(segments, TagSegment{Text: tagSeparator})
		}
	}
	return segments
}
