package sfv

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is the single error category reported for input or values that
// fall outside the structured field grammar. Every *ParseError and
// *SerializeError matches it under errors.Is.
var ErrMalformed = errors.New("sfv: malformed structured field")

// ParseError describes the grammar rule that failed and where.
type ParseError struct {
	Message string
	Offset  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sfv: %s at offset %d", e.Message, e.Offset)
}

// Unwrap makes errors.Is(err, ErrMalformed) hold.
func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// ParseOptions configures optional resource limits. Zero means unlimited; the
// grammar itself is always enforced in full.
type ParseOptions struct {
	MaxLength         int // bytes of input
	MaxMembers        int // list or dictionary members
	MaxParameters     int // parameters on a single item or inner list
	MaxInnerListItems int // items in a single inner list
}

// Parser reads one structured field value from a byte slice with a single
// forward cursor. A Parser is not safe for concurrent use; the package-level
// Parse functions allocate one per call.
type Parser struct {
	data []byte
	pos  int
	opts ParseOptions
}

// NewParser creates a parser over data.
func NewParser(data []byte, opts ParseOptions) *Parser {
	return &Parser{data: data, opts: opts}
}

// ParseItem parses data as an Item field value.
func ParseItem(data []byte) (Item, error) {
	return NewParser(data, ParseOptions{}).ParseItem()
}

// ParseList parses data as a List field value.
func ParseList(data []byte) (List, error) {
	return NewParser(data, ParseOptions{}).ParseList()
}

// ParseDictionary parses data as a Dictionary field value.
func ParseDictionary(data []byte) (*Dictionary, error) {
	return NewParser(data, ParseOptions{}).ParseDictionary()
}

// ParseItem parses the whole input as an Item.
func (p *Parser) ParseItem() (Item, error) {
	if err := p.begin(p.skipSP); err != nil {
		return Item{}, err
	}
	item, err := p.parseItem()
	if err != nil {
		return Item{}, err
	}
	if err := p.end(p.skipSP); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ParseList parses the whole input as a List. Empty or all-OWS input yields an
// empty List.
func (p *Parser) ParseList() (List, error) {
	if err := p.begin(p.skipOWS); err != nil {
		return nil, err
	}
	list := List{}
	for !p.eof() {
		if p.opts.MaxMembers > 0 && len(list) >= p.opts.MaxMembers {
			return nil, p.errorf("list members exceed limit %d", p.opts.MaxMembers)
		}
		m, err := p.parseItemOrInnerList()
		if err != nil {
			return nil, err
		}
		list = append(list, m)

		more, err := p.memberSeparator()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := p.end(p.skipOWS); err != nil {
		return nil, err
	}
	return list, nil
}

// ParseDictionary parses the whole input as a Dictionary. Empty or all-OWS input
// yields an empty Dictionary. A repeated key overwrites the earlier value in place.
func (p *Parser) ParseDictionary() (*Dictionary, error) {
	if err := p.begin(p.skipOWS); err != nil {
		return nil, err
	}
	dict := NewDictionary()
	for !p.eof() {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		var m Member
		if p.peek() == '=' {
			p.pos++
			m, err = p.parseItemOrInnerList()
			if err != nil {
				return nil, err
			}
		} else {
			params, err := p.parseParameters()
			if err != nil {
				return nil, err
			}
			m = Item{Bare: Bool(true), Parameters: params}
		}

		if p.opts.MaxMembers > 0 && !dict.Has(key) && dict.Len() >= p.opts.MaxMembers {
			return nil, p.errorf("dictionary members exceed limit %d", p.opts.MaxMembers)
		}
		dict.m.put(key, m)

		more, err := p.memberSeparator()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := p.end(p.skipOWS); err != nil {
		return nil, err
	}
	return dict, nil
}

// ============================================================
// Combining field lines
// ============================================================

// ParseMore parses data as a List and appends its members to l, as when a
// field appears on more than one line. l is unchanged if data is malformed.
func (l *List) ParseMore(data []byte) error {
	return l.ParseMoreWithOptions(data, ParseOptions{})
}

// ParseMoreWithOptions is ParseMore with limits applied to data. MaxMembers
// bounds the combined list, not just the members found in data.
func (l *List) ParseMoreWithOptions(data []byte, opts ParseOptions) error {
	more, err := NewParser(data, opts).ParseList()
	if err != nil {
		return err
	}
	if total := len(*l) + len(more); opts.MaxMembers > 0 && total > opts.MaxMembers {
		return &ParseError{Message: fmt.Sprintf("combined list members %d exceed limit %d", total, opts.MaxMembers), Offset: len(data)}
	}
	*l = append(*l, more...)
	return nil
}

// ParseMore parses data as a Dictionary and merges its members into d. Keys
// already present are updated in place. d is unchanged if data is malformed.
func (d *Dictionary) ParseMore(data []byte) error {
	return d.ParseMoreWithOptions(data, ParseOptions{})
}

// ParseMoreWithOptions is ParseMore with limits applied to data. MaxMembers
// bounds the combined dictionary; keys that are updated in place do not count
// twice.
func (d *Dictionary) ParseMoreWithOptions(data []byte, opts ParseOptions) error {
	more, err := NewParser(data, opts).ParseDictionary()
	if err != nil {
		return err
	}
	merged := d.m.clone()
	for k, v := range more.All() {
		merged.put(k, v)
	}
	if opts.MaxMembers > 0 && merged.len() > opts.MaxMembers {
		return &ParseError{Message: fmt.Sprintf("combined dictionary members %d exceed limit %d", merged.len(), opts.MaxMembers), Offset: len(data)}
	}
	d.m = merged
	return nil
}

// ============================================================
// encoding.TextUnmarshaler
// ============================================================

// UnmarshalText parses text as an Item.
func (i *Item) UnmarshalText(text []byte) error {
	item, err := ParseItem(text)
	if err != nil {
		return err
	}
	*i = item
	return nil
}

// UnmarshalText parses text as a List, replacing the contents of l.
func (l *List) UnmarshalText(text []byte) error {
	list, err := ParseList(text)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

// UnmarshalText parses text as a Dictionary, replacing the contents of d.
func (d *Dictionary) UnmarshalText(text []byte) error {
	dict, err := ParseDictionary(text)
	if err != nil {
		return err
	}
	*d = *dict
	return nil
}

// ============================================================
// Cursor
// ============================================================

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Offset: p.pos}
}

func (p *Parser) eof() bool {
	return p.pos >= len(p.data)
}

// peek returns the current byte, or 0 at end of input. NUL never starts or
// continues any production, so it is a safe sentinel.
func (p *Parser) peek() byte {
	if p.pos >= len(p.data) {
		return 0
	}
	return p.data[p.pos]
}

func (p *Parser) skipSP() {
	for p.pos < len(p.data) && p.data[p.pos] == ' ' {
		p.pos++
	}
}

func (p *Parser) skipOWS() {
	for p.pos < len(p.data) && isOWS(p.data[p.pos]) {
		p.pos++
	}
}

// begin checks limits and discards leading whitespace. Item fields allow SP
// only; lists and dictionaries allow OWS.
func (p *Parser) begin(skip func()) error {
	if p.opts.MaxLength > 0 && len(p.data) > p.opts.MaxLength {
		return &ParseError{Message: fmt.Sprintf("input length %d exceeds limit %d", len(p.data), p.opts.MaxLength)}
	}
	skip()
	return nil
}

// end discards trailing whitespace and requires that nothing else remains.
func (p *Parser) end(skip func()) error {
	skip()
	if !p.eof() {
		return p.errorf("unexpected trailing characters")
	}
	return nil
}

// memberSeparator consumes OWS "," OWS between list or dictionary members.
// It reports false when the input is exhausted after the last member.
func (p *Parser) memberSeparator() (bool, error) {
	p.skipOWS()
	if p.eof() {
		return false, nil
	}
	if p.peek() != ',' {
		return false, p.errorf("expected ',' after member, got %q", p.peek())
	}
	p.pos++
	p.skipOWS()
	if p.eof() {
		return false, p.errorf("trailing comma")
	}
	return true, nil
}

// ============================================================
// Members
// ============================================================

func (p *Parser) parseItemOrInnerList() (Member, error) {
	if p.peek() == '(' {
		return p.parseInnerList()
	}
	return p.parseItem()
}

func (p *Parser) parseItem() (Item, error) {
	bare, err := p.parseBareItem()
	if err != nil {
		return Item{}, err
	}
	params, err := p.parseParameters()
	if err != nil {
		return Item{}, err
	}
	return Item{Bare: bare, Parameters: params}, nil
}

// parseInnerList parses "(" *SP [ item *( 1*SP item ) *SP ] ")" parameters.
func (p *Parser) parseInnerList() (InnerList, error) {
	if p.peek() != '(' {
		return InnerList{}, p.errorf("expected '(' at start of inner list")
	}
	p.pos++

	var items []Item
	for !p.eof() {
		p.skipSP()
		if p.peek() == ')' {
			p.pos++
			params, err := p.parseParameters()
			if err != nil {
				return InnerList{}, err
			}
			if items == nil {
				items = []Item{}
			}
			return InnerList{Items: items, Parameters: params}, nil
		}

		if p.opts.MaxInnerListItems > 0 && len(items) >= p.opts.MaxInnerListItems {
			return InnerList{}, p.errorf("inner list items exceed limit %d", p.opts.MaxInnerListItems)
		}
		item, err := p.parseItem()
		if err != nil {
			return InnerList{}, err
		}
		items = append(items, item)

		if c := p.peek(); c != ' ' && c != ')' {
			if p.eof() {
				break
			}
			return InnerList{}, p.errorf("expected SP or ')' in inner list, got %q", c)
		}
	}
	return InnerList{}, p.errorf("unterminated inner list")
}

// parseParameters parses *( ";" *SP key [ "=" bare-item ] ).
func (p *Parser) parseParameters() (Parameters, error) {
	var params Parameters
	for p.peek() == ';' {
		p.pos++
		p.skipSP()
		key, err := p.parseKey()
		if err != nil {
			return Parameters{}, err
		}
		value := Bool(true)
		if p.peek() == '=' {
			p.pos++
			value, err = p.parseBareItem()
			if err != nil {
				return Parameters{}, err
			}
		}
		if p.opts.MaxParameters > 0 && !params.Has(key) && params.Len() >= p.opts.MaxParameters {
			return Parameters{}, p.errorf("parameters exceed limit %d", p.opts.MaxParameters)
		}
		params.m.put(key, value)
	}
	return params, nil
}

func (p *Parser) parseKey() (string, error) {
	if !isKeyStart(p.peek()) {
		if p.eof() {
			return "", p.errorf("expected key, got end of input")
		}
		return "", p.errorf("invalid key start character %q", p.peek())
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.data) && isKeyChar(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos]), nil
}

// ============================================================
// Bare items
// ============================================================

// parseBareItem dispatches on the first byte; the grammar is LL(1) here.
func (p *Parser) parseBareItem() (BareItem, error) {
	if p.eof() {
		return BareItem{}, p.errorf("expected bare item, got end of input")
	}

	c := p.peek()
	switch {
	case c == '-' || isDigit(c):
		return p.parseNumber()
	case c == '"':
		return p.parseString()
	case c == ':':
		return p.parseByteSeq()
	case c == '?':
		return p.parseBoolean()
	case isTokenStart(c):
		return p.parseToken()
	default:
		return BareItem{}, p.errorf("invalid bare item start character %q", c)
	}
}

// Digit limits of sf-integer and sf-decimal.
const (
	maxIntegerChars     = 15
	maxDecimalIntDigits = 12
	maxDecimalChars     = 16 // 12 integer digits, '.', 3 fractional digits
	maxDecimalFrac      = 3
)

// MaxInteger is the largest magnitude an Integer may have.
const MaxInteger = 999_999_999_999_999

// parseNumber follows the character-counting algorithm of RFC 8941 4.2.4.
func (p *Parser) parseNumber() (BareItem, error) {
	neg := false
	if p.peek() == '-' {
		neg = true
		p.pos++
	}
	if !isDigit(p.peek()) {
		return BareItem{}, p.errorf("expected digit in number")
	}

	start := p.pos
	decimal := false
	dot := -1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isDigit(c) {
			p.pos++
		} else if !decimal && c == '.' {
			if p.pos-start > maxDecimalIntDigits {
				return BareItem{}, p.errorf("decimal has more than %d integer digits", maxDecimalIntDigits)
			}
			decimal = true
			dot = p.pos
			p.pos++
		} else {
			break
		}

		n := p.pos - start
		if !decimal && n > maxIntegerChars {
			return BareItem{}, p.errorf("integer has more than %d digits", maxIntegerChars)
		}
		if decimal && n > maxDecimalChars {
			return BareItem{}, p.errorf("decimal has too many digits")
		}
	}

	text := string(p.data[start:p.pos])
	if !decimal {
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return BareItem{}, p.errorf("invalid integer %q", text)
		}
		if neg {
			v = -v
		}
		return Int(v), nil
	}

	frac := p.pos - dot - 1
	if frac == 0 {
		return BareItem{}, p.errorf("decimal ends with '.'")
	}
	if frac > maxDecimalFrac {
		return BareItem{}, p.errorf("decimal has more than %d fractional digits", maxDecimalFrac)
	}

	intPart, fracPart := text[:dot-start], text[dot-start+1:]
	coef, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return BareItem{}, p.errorf("invalid decimal %q", text)
	}
	if neg {
		coef = -coef
	}
	d, err := NewDecimal(coef, len(fracPart))
	if err != nil {
		return BareItem{}, p.errorf("invalid decimal %q", text)
	}
	return Dec(d), nil
}

// parseString parses DQUOTE *chr DQUOTE, unescaping \" and \\.
func (p *Parser) parseString() (BareItem, error) {
	p.pos++ // opening quote

	buf := make([]byte, 0, 16)
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch {
		case c == '\\':
			if p.eof() {
				return BareItem{}, p.errorf("unterminated escape in string")
			}
			next := p.data[p.pos]
			if next != '"' && next != '\\' {
				return BareItem{}, p.errorf("invalid escape %q in string", next)
			}
			buf = append(buf, next)
			p.pos++
		case c == '"':
			return Str(string(buf)), nil
		case !isVisibleASCII(c):
			p.pos--
			return BareItem{}, p.errorf("invalid character %q in string", c)
		default:
			buf = append(buf, c)
		}
	}
	return BareItem{}, p.errorf("unterminated string")
}

// parseToken consumes token characters until the first byte outside the set.
func (p *Parser) parseToken() (BareItem, error) {
	if !isTokenStart(p.peek()) {
		return BareItem{}, p.errorf("invalid token start character %q", p.peek())
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.data) && isTokenChar(p.data[p.pos]) {
		p.pos++
	}
	return Token(string(p.data[start:p.pos])), nil
}

// parseByteSeq parses ":" *base64 ":". Padding is required.
func (p *Parser) parseByteSeq() (BareItem, error) {
	p.pos++ // opening colon
	start := p.pos
	for p.pos < len(p.data) && p.data[p.pos] != ':' {
		if !isBase64Char(p.data[p.pos]) {
			return BareItem{}, p.errorf("invalid character %q in byte sequence", p.data[p.pos])
		}
		p.pos++
	}
	if p.eof() {
		return BareItem{}, p.errorf("unterminated byte sequence")
	}

	encoded := p.data[start:p.pos]
	p.pos++ // closing colon

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(decoded, encoded)
	if err != nil {
		return BareItem{}, &ParseError{Message: fmt.Sprintf("invalid base64 in byte sequence: %v", err), Offset: start}
	}
	return Bytes(decoded[:n]), nil
}

func (p *Parser) parseBoolean() (BareItem, error) {
	p.pos++ // '?'
	switch p.peek() {
	case '1':
		p.pos++
		return Bool(true), nil
	case '0':
		p.pos++
		return Bool(false), nil
	}
	return BareItem{}, p.errorf("boolean must be ?0 or ?1")
}
