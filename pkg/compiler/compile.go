package compiler

// Compile runs the whole pipeline over src and returns the assembly listing.
// The returned error is a *LexError or *ParseError.
func Compile(src string) (string, error) {
	tokens, err := Lex(src)
	if err != nil {
		return "", err
	}

	prog, err := Parse(tokens)
	if err != nil {
		return "", err
	}

	return Generate(prog), nil
}
