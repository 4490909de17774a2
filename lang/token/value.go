package token

// Value carries the literal payload scanned alongside a Token. Raw is the
// exact source text of the token; Int and Str are populated only for INT and
// STR tokens respectively.
type Value struct {
	Raw string
	Pos Pos
	Int int64
	Str string
}
