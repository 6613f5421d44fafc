package extractor

const (
	keywordModule    = "module"
	keywordEndModule = "endmodule"
)

// directionKeywords maps the port direction keywords to their Direction.
var directionKeywords = map[string]Direction{
	"input":  DirectionInput,
	"output": DirectionOutput,
	"inout":  DirectionInout,
}

// typeQualifiers are net/variable keywords that may sit between a direction
// keyword and the width or name of an ANSI port declaration.
var typeQualifiers = map[string]bool{
	"wire":     true,
	"reg":      true,
	"logic":    true,
	"signed":   true,
	"unsigned": true,
	"var":      true,
	"tri":      true,
	"wand":     true,
	"wor":      true,
	"integer":  true,
	"bit":      true,
}

// matchDirection returns the direction if tok is a port direction keyword
func matchDirection(tok token) (Direction, bool) {
	if tok.kind != tokenWord {
		return "", false
	}
	dir, ok := directionKeywords[tok.text]
	return dir, ok
}

// matchModule reports whether tokens[i] starts a "module <name>" declaration
func matchModule(tokens []token, i int) (string, bool) {
	if tokens[i].kind != tokenWord || tokens[i].text != keywordModule {
		return "", false
	}
	if i+1 >= len(tokens) || tokens[i+1].kind != tokenWord {
		return "", false
	}
	return tokens[i+1].text, true
}

func isTypeQualifier(tok token) bool {
	return tok.kind == tokenWord && typeQualifiers[tok.text]
}

func isPunct(tok token, text string) bool {
	return tok.kind == tokenPunct && tok.text == text
}
