package scanner

import "github.com/rekolang/reko/lang/token"

// TokenAndValue combines a scanned token with its literal value, mirroring
// the teacher's lang/scanner.TokenAndValue.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanAll tokenizes src in full and returns every token up to and including
// the terminal EOF. The returned error, if non-nil, is an ErrorList and
// collects every lexical error found rather than stopping at the first one.
func ScanAll(src []byte) ([]TokenAndValue, error) {
	var (
		s   Scanner
		val token.Value
		el  ErrorList
	)
	s.Init(src, el.Add)

	var toks []TokenAndValue
	for {
		tok := s.Scan(&val)
		toks = append(toks, TokenAndValue{Token: tok, Value: val})
		if tok == token.EOF {
			break
		}
	}
	el.Sort()
	return toks, el.Err()
}
