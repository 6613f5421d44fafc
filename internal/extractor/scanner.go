package extractor

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenWord    tokenKind = iota // run of letters, digits and underscores
	tokenBracket                  // a balanced [...] group, brackets included
	tokenPunct                    // any other single rune
)

type token struct {
	kind tokenKind
	text string
	line int
}

// scan splits source into word tokens, bracket groups and punctuation.
// Whitespace only separates tokens. Comments, strings and directives are not
// recognized and come out as ordinary tokens.
func scan(source string) []token {
	var tokens []token
	line := 1

	for i := 0; i < len(source); {
		r, size := utf8.DecodeRuneInString(source[i:])
		switch {
		case r == '\n':
			line++
			i += size

		case unicode.IsSpace(r):
			i += size

		case isWordRune(r):
			start := i
			for i < len(source) {
				r, size := utf8.DecodeRuneInString(source[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, token{kind: tokenWord, text: source[start:i], line: line})

		case r == '[':
			end, newlines, ok := matchBracket(source, i)
			if !ok {
				// Unterminated group: keep scanning past the bracket.
				tokens = append(tokens, token{kind: tokenPunct, text: "[", line: line})
				i += size
				continue
			}
			tokens = append(tokens, token{kind: tokenBracket, text: source[i:end], line: line})
			line += newlines
			i = end

		default:
			tokens = append(tokens, token{kind: tokenPunct, text: string(r), line: line})
			i += size
		}
	}

	return tokens
}

// matchBracket returns the offset just past the ']' closing the '[' at start.
// Nested brackets are balanced so "[a[1]:0]" is one group.
func matchBracket(source string, start int) (end, newlines int, ok bool) {
	depth := 0
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1, newlines, true
			}
		case '\n':
			newlines++
		}
	}
	return 0, 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
