// Package sfv parses and serializes Structured Field Values, the typed field
// grammar of RFC 8941.
//
// # Data Model
//
// A field value is one of three top-level shapes:
//   - Item: a bare item with Parameters
//   - List: a sequence of Members
//   - Dictionary: an ordered map from keys to Members
//
// A Member is either an Item or an InnerList (a parenthesized sequence of Items
// with its own Parameters). Bare items are Integer, Decimal, String, Token,
// Byte Sequence or Boolean.
//
// # Parsing
//
//	item, err := sfv.ParseItem([]byte(`12.445;foo=bar`))
//	list, err := sfv.ParseList([]byte(`1;a=tok, ("foo" "bar");baz, ()`))
//	dict, err := sfv.ParseDictionary([]byte(`a=?0, b, c; foo=bar`))
//
// Parsing is all or nothing: any grammar violation returns a *ParseError and no
// partial value. When a field occurs on several lines, ParseMore appends the
// members of each later line to the value parsed from the first one.
//
// # Serializing
//
//	params := sfv.NewParameters()
//	params.Set("key", sfv.Dec(sfv.MustDecimal("13.45655")))
//	s, err := sfv.NewItemWithParams(sfv.Int(99), params).Serialize()
//	// s == "99;key=13.457"
//
// Serialization produces the single canonical text for a value. Constructors
// never validate, so values built in code are checked there: an invalid key,
// token or string, or an out-of-range number, yields a *SerializeError.
//
// # Decimals
//
// Decimal is fixed point. It may hold more than three fractional digits in
// memory; the serializer rounds to three, half to even.
//
// All parse and serialize functions are pure and safe to call concurrently on
// distinct values.
package sfv
