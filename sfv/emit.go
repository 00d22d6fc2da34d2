package sfv

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyField is matched (via errors.Is or IsEmptyField) by the error
// returned when serializing an empty List or Dictionary. Such a field is
// omitted rather than sent with an empty value.
var ErrEmptyField = errors.New("sfv: empty list or dictionary is not serialized")

// SerializeError reports a value that cannot be written in the grammar, which
// only happens for values built directly rather than parsed.
type SerializeError struct {
	Message string
	cause   error
}

func (e *SerializeError) Error() string {
	return "sfv: " + e.Message
}

// Unwrap makes errors.Is(err, ErrMalformed) hold, plus errors.Is for the
// specific cause when there is one.
func (e *SerializeError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrMalformed, e.cause}
	}
	return []error{ErrMalformed}
}

func emptyFieldError() error {
	return &SerializeError{Message: "empty list or dictionary is not serialized", cause: ErrEmptyField}
}

func serializeErrorf(format string, args ...any) error {
	return &SerializeError{Message: fmt.Sprintf(format, args...)}
}

// FieldValue is anything with a canonical textual form.
type FieldValue interface {
	Serialize() (string, error)
}

// Serialize returns the canonical text of v.
func Serialize(v FieldValue) (string, error) {
	if v == nil {
		return "", serializeErrorf("nil value")
	}
	return v.Serialize()
}

// Serialize returns the canonical text of the item.
func (i Item) Serialize() (string, error) {
	var e emitter
	if err := e.item(i); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

// Serialize returns the canonical text of the inner list.
func (l InnerList) Serialize() (string, error) {
	var e emitter
	if err := e.innerList(l); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

// Serialize returns the canonical text of the list. An empty list fails with
// ErrEmptyField.
func (l List) Serialize() (string, error) {
	if len(l) == 0 {
		return "", emptyFieldError()
	}
	var e emitter
	for i, m := range l {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		if err := e.member(m); err != nil {
			return "", err
		}
	}
	return e.sb.String(), nil
}

// Serialize returns the canonical text of the dictionary. An empty dictionary
// fails with ErrEmptyField.
func (d *Dictionary) Serialize() (string, error) {
	if d.Len() == 0 {
		return "", emptyFieldError()
	}
	var e emitter
	i := 0
	for key, m := range d.All() {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		i++
		if err := e.key(key); err != nil {
			return "", err
		}
		// A member whose value is Boolean true is written as its bare key.
		if item, ok := m.(Item); ok && item.Bare.isTrue() {
			if err := e.params(item.Parameters); err != nil {
				return "", err
			}
			continue
		}
		e.sb.WriteByte('=')
		if err := e.member(m); err != nil {
			return "", err
		}
	}
	return e.sb.String(), nil
}

// Serialize returns the canonical text of the bare item.
func (b BareItem) Serialize() (string, error) {
	var e emitter
	if err := e.bareItem(b); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

// Serialize returns the canonical text of the parameters, including the
// leading ';' of each.
func (p Parameters) Serialize() (string, error) {
	var e emitter
	if err := e.params(p); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

// ============================================================
// encoding.TextMarshaler
// ============================================================

// MarshalText implements encoding.TextMarshaler.
func (i Item) MarshalText() ([]byte, error) {
	s, err := i.Serialize()
	return []byte(s), err
}

// MarshalText implements encoding.TextMarshaler.
func (l List) MarshalText() ([]byte, error) {
	s, err := l.Serialize()
	return []byte(s), err
}

// MarshalText implements encoding.TextMarshaler.
func (d *Dictionary) MarshalText() ([]byte, error) {
	s, err := d.Serialize()
	return []byte(s), err
}

// ============================================================
// Emitter
// ============================================================

type emitter struct {
	sb strings.Builder
}

func (e *emitter) member(m Member) error {
	switch v := m.(type) {
	case Item:
		return e.item(v)
	case InnerList:
		return e.innerList(v)
	case nil:
		return serializeErrorf("nil member")
	default:
		return serializeErrorf("unknown member type %T", m)
	}
}

func (e *emitter) item(i Item) error {
	if err := e.bareItem(i.Bare); err != nil {
		return err
	}
	return e.params(i.Parameters)
}

func (e *emitter) innerList(l InnerList) error {
	e.sb.WriteByte('(')
	for i, item := range l.Items {
		if i > 0 {
			e.sb.WriteByte(' ')
		}
		if err := e.item(item); err != nil {
			return err
		}
	}
	e.sb.WriteByte(')')
	return e.params(l.Parameters)
}

func (e *emitter) params(p Parameters) error {
	for key, v := range p.All() {
		e.sb.WriteByte(';')
		if err := e.key(key); err != nil {
			return err
		}
		if v.isTrue() {
			continue
		}
		e.sb.WriteByte('=')
		if err := e.bareItem(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) key(k string) error {
	if !ValidKey(k) {
		return serializeErrorf("invalid key %q", k)
	}
	e.sb.WriteString(k)
	return nil
}

func (e *emitter) bareItem(b BareItem) error {
	switch b.kind {
	case KindNumber:
		if b.num.decimal {
			return e.decimal(b.num.d)
		}
		return e.integer(b.num.i)
	case KindString:
		return e.str(b.strVal)
	case KindToken:
		return e.token(b.strVal)
	case KindByteSeq:
		e.sb.WriteByte(':')
		e.sb.WriteString(base64.StdEncoding.EncodeToString(b.bytes))
		e.sb.WriteByte(':')
		return nil
	case KindBoolean:
		if b.boolVal {
			e.sb.WriteString("?1")
		} else {
			e.sb.WriteString("?0")
		}
		return nil
	default:
		return serializeErrorf("bare item has no value")
	}
}

func (e *emitter) integer(n int64) error {
	if n > MaxInteger || n < -MaxInteger {
		return serializeErrorf("integer %d out of range", n)
	}
	e.sb.WriteString(strconv.FormatInt(n, 10))
	return nil
}

// decimal rounds to three fractional digits, half to even, then writes the
// shortest form that keeps at least one fractional digit.
func (e *emitter) decimal(d Decimal) error {
	r := d.Round(maxDecimalFrac)
	if r.integerDigits() > maxDecimalIntDigits {
		return serializeErrorf("decimal %s has more than %d integer digits", d, maxDecimalIntDigits)
	}
	writeDecimalDigits(&e.sb, r.Sign() < 0, magnitude(r.coef), int(r.scale))
	return nil
}

func (e *emitter) str(s string) error {
	e.sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isVisibleASCII(c) {
			return serializeErrorf("invalid character %q in string", c)
		}
		if c == '"' || c == '\\' {
			e.sb.WriteByte('\\')
		}
		e.sb.WriteByte(c)
	}
	e.sb.WriteByte('"')
	return nil
}

func (e *emitter) token(s string) error {
	if !ValidToken(s) {
		return serializeErrorf("invalid token %q", s)
	}
	e.sb.WriteString(s)
	return nil
}

// IsEmptyField reports whether err means the value should be omitted.
func IsEmptyField(err error) bool {
	return errors.Is(err, ErrEmptyField)
}
