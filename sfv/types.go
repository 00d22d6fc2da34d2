package sfv

import (
	"bytes"
	"fmt"
	"iter"
)

// Kind identifies the variant held by a BareItem.
type Kind uint8

const (
	KindNone Kind = iota // zero BareItem; never produced by the parser
	KindNumber
	KindString
	KindByteSeq
	KindBoolean
	KindToken
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindByteSeq:
		return "byteseq"
	case KindBoolean:
		return "boolean"
	case KindToken:
		return "token"
	default:
		return "unknown"
	}
}

// ============================================================
// Numbers
// ============================================================

// Num is either an Integer or a Decimal.
type Num struct {
	decimal bool
	i       int64
	d       Decimal
}

// IntNum wraps an integer.
func IntNum(v int64) Num {
	return Num{i: v}
}

// DecNum wraps a decimal.
func DecNum(d Decimal) Num {
	return Num{decimal: true, d: d}
}

// IsDecimal reports whether n holds a Decimal.
func (n Num) IsDecimal() bool { return n.decimal }

// Int returns the integer value. It returns 0 for a decimal; check IsDecimal
// first, or use BareItem.AsInt which reports the mismatch as an error.
func (n Num) Int() int64 { return n.i }

// Decimal returns the decimal value. It returns the zero Decimal for an
// integer; check IsDecimal first, or use BareItem.AsDecimal.
func (n Num) Decimal() Decimal { return n.d }

// Equal reports whether both numbers have the same variant and value.
func (n Num) Equal(other Num) bool {
	if n.decimal != other.decimal {
		return false
	}
	if n.decimal {
		return n.d.Equal(other.d)
	}
	return n.i == other.i
}

func (n Num) String() string {
	if n.decimal {
		return n.d.String()
	}
	return fmt.Sprintf("%d", n.i)
}

// ============================================================
// Bare items
// ============================================================

// BareItem is an Item's value without its parameters, and the value type of
// Parameters. Constructing one performs no validation; the serializer checks
// grammar constraints.
type BareItem struct {
	kind    Kind
	num     Num
	strVal  string // String and Token
	bytes   []byte
	boolVal bool
}

// Int creates an Integer bare item.
func Int(v int64) BareItem {
	return BareItem{kind: KindNumber, num: IntNum(v)}
}

// Dec creates a Decimal bare item.
func Dec(d Decimal) BareItem {
	return BareItem{kind: KindNumber, num: DecNum(d)}
}

// Number creates a bare item from a Num.
func Number(n Num) BareItem {
	return BareItem{kind: KindNumber, num: n}
}

// Str creates a String bare item. s holds the unescaped text.
func Str(s string) BareItem {
	return BareItem{kind: KindString, strVal: s}
}

// Token creates a Token bare item.
func Token(s string) BareItem {
	return BareItem{kind: KindToken, strVal: s}
}

// Bytes creates a Byte Sequence bare item.
func Bytes(b []byte) BareItem {
	if b == nil {
		b = []byte{}
	}
	return BareItem{kind: KindByteSeq, bytes: b}
}

// Bool creates a Boolean bare item.
func Bool(v bool) BareItem {
	return BareItem{kind: KindBoolean, boolVal: v}
}

// Kind returns the variant held by b.
func (b BareItem) Kind() Kind { return b.kind }

// IsDecimal reports whether b is a Decimal number.
func (b BareItem) IsDecimal() bool {
	return b.kind == KindNumber && b.num.decimal
}

// IsInteger reports whether b is an Integer number.
func (b BareItem) IsInteger() bool {
	return b.kind == KindNumber && !b.num.decimal
}

// AsNum returns the number held by b.
func (b BareItem) AsNum() (Num, error) {
	if b.kind != KindNumber {
		return Num{}, fmt.Errorf("sfv: expected number, got %s", b.kind)
	}
	return b.num, nil
}

// AsInt returns the integer held by b.
func (b BareItem) AsInt() (int64, error) {
	if !b.IsInteger() {
		return 0, fmt.Errorf("sfv: expected integer, got %s", b.describe())
	}
	return b.num.i, nil
}

// AsDecimal returns the decimal held by b.
func (b BareItem) AsDecimal() (Decimal, error) {
	if !b.IsDecimal() {
		return Decimal{}, fmt.Errorf("sfv: expected decimal, got %s", b.describe())
	}
	return b.num.d, nil
}

// AsString returns the unescaped text of a String.
func (b BareItem) AsString() (string, error) {
	if b.kind != KindString {
		return "", fmt.Errorf("sfv: expected string, got %s", b.kind)
	}
	return b.strVal, nil
}

// AsToken returns the text of a Token.
func (b BareItem) AsToken() (string, error) {
	if b.kind != KindToken {
		return "", fmt.Errorf("sfv: expected token, got %s", b.kind)
	}
	return b.strVal, nil
}

// AsBytes returns the content of a Byte Sequence.
func (b BareItem) AsBytes() ([]byte, error) {
	if b.kind != KindByteSeq {
		return nil, fmt.Errorf("sfv: expected byteseq, got %s", b.kind)
	}
	return b.bytes, nil
}

// AsBool returns the value of a Boolean.
func (b BareItem) AsBool() (bool, error) {
	if b.kind != KindBoolean {
		return false, fmt.Errorf("sfv: expected boolean, got %s", b.kind)
	}
	return b.boolVal, nil
}

func (b BareItem) describe() string {
	switch {
	case b.IsDecimal():
		return "decimal"
	case b.IsInteger():
		return "integer"
	}
	return b.kind.String()
}

// isTrue reports whether b is Boolean true, the value implied by a bare key.
func (b BareItem) isTrue() bool {
	return b.kind == KindBoolean && b.boolVal
}

// Equal reports whether b and other hold the same variant and value.
func (b BareItem) Equal(other BareItem) bool {
	if b.kind != other.kind {
		return false
	}
	switch b.kind {
	case KindNumber:
		return b.num.Equal(other.num)
	case KindString, KindToken:
		return b.strVal == other.strVal
	case KindByteSeq:
		return bytes.Equal(b.bytes, other.bytes)
	case KindBoolean:
		return b.boolVal == other.boolVal
	}
	return true
}

// GoString renders b for debugging output.
func (b BareItem) GoString() string {
	switch b.kind {
	case KindNumber:
		if b.num.decimal {
			return "Dec(" + b.num.d.String() + ")"
		}
		return fmt.Sprintf("Int(%d)", b.num.i)
	case KindString:
		return fmt.Sprintf("Str(%q)", b.strVal)
	case KindToken:
		return fmt.Sprintf("Token(%q)", b.strVal)
	case KindByteSeq:
		return fmt.Sprintf("Bytes(%x)", b.bytes)
	case KindBoolean:
		return fmt.Sprintf("Bool(%t)", b.boolVal)
	}
	return "BareItem{}"
}

// ============================================================
// Parameters
// ============================================================

// Parameters is an ordered map of keys to bare items attached to an Item or
// an InnerList. The zero value is empty and ready to use.
type Parameters struct {
	m ordered[BareItem]
}

// NewParameters returns an empty Parameters.
func NewParameters() Parameters {
	return Parameters{}
}

// Set inserts or replaces key. A replaced key keeps its position. Set writes
// to new storage, so copies of p made earlier (for example inside an Item) are
// not affected.
func (p *Parameters) Set(key string, v BareItem) {
	p.m.set(key, v)
}

// Get returns the value for key.
func (p Parameters) Get(key string) (BareItem, bool) {
	return p.m.get(key)
}

// Has reports whether key is present.
func (p Parameters) Has(key string) bool {
	_, ok := p.m.get(key)
	return ok
}

// Delete removes key and reports whether it was present. Like Set, it leaves
// earlier copies of p untouched.
func (p *Parameters) Delete(key string) bool {
	return p.m.delete(key)
}

// Len returns the number of parameters.
func (p Parameters) Len() int { return p.m.len() }

// Keys returns the keys in order.
func (p Parameters) Keys() []string { return p.m.keys() }

// All iterates over the parameters in order.
func (p Parameters) All() iter.Seq2[string, BareItem] { return p.m.all() }

// Clone returns a copy that shares no storage with p.
func (p Parameters) Clone() Parameters {
	return Parameters{m: p.m.clone()}
}

// Equal reports whether both hold the same keys in the same order with equal values.
func (p Parameters) Equal(other Parameters) bool {
	return p.m.equal(&other.m, BareItem.Equal)
}

// ============================================================
// Items, inner lists and members
// ============================================================

// Member is a List member or a Dictionary value: an Item or an InnerList.
type Member interface {
	member()
	// Params returns the parameters attached to the member.
	Params() Parameters
}

// Item is a bare item with parameters.
type Item struct {
	Bare       BareItem
	Parameters Parameters
}

// NewItem returns an Item with no parameters.
func NewItem(bare BareItem) Item {
	return Item{Bare: bare}
}

// NewItemWithParams returns an Item with the given parameters.
func NewItemWithParams(bare BareItem, params Parameters) Item {
	return Item{Bare: bare, Parameters: params}
}

func (Item) member() {}

// Params returns the item's parameters.
func (i Item) Params() Parameters { return i.Parameters }

// Equal reports whether both items have equal bare items and parameters.
func (i Item) Equal(other Item) bool {
	return i.Bare.Equal(other.Bare) && i.Parameters.Equal(other.Parameters)
}

// InnerList is an array of Items with its own parameters.
type InnerList struct {
	Items      []Item
	Parameters Parameters
}

// NewInnerList returns an InnerList with no parameters.
func NewInnerList(items ...Item) InnerList {
	return InnerList{Items: items}
}

// NewInnerListWithParams returns an InnerList with the given parameters.
func NewInnerListWithParams(items []Item, params Parameters) InnerList {
	return InnerList{Items: items, Parameters: params}
}

func (InnerList) member() {}

// Params returns the inner list's parameters.
func (l InnerList) Params() Parameters { return l.Parameters }

// Equal reports whether both inner lists hold equal items and parameters.
func (l InnerList) Equal(other InnerList) bool {
	if len(l.Items) != len(other.Items) {
		return false
	}
	for i := range l.Items {
		if !l.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	return l.Parameters.Equal(other.Parameters)
}

func memberEqual(a, b Member) bool {
	switch av := a.(type) {
	case Item:
		bv, ok := b.(Item)
		return ok && av.Equal(bv)
	case InnerList:
		bv, ok := b.(InnerList)
		return ok && av.Equal(bv)
	}
	return a == nil && b == nil
}

// ============================================================
// Top-level values
// ============================================================

// List is an ordered sequence of members.
type List []Member

// Equal reports whether both lists hold equal members in the same order.
func (l List) Equal(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !memberEqual(l[i], other[i]) {
			return false
		}
	}
	return true
}

// Dictionary is an ordered map of keys to members. The zero value is empty and
// ready to use.
type Dictionary struct {
	m ordered[Member]
}

// NewDictionary returns an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// Set inserts or replaces key. A replaced key keeps its position. Copies of
// the Dictionary value made earlier are not affected.
func (d *Dictionary) Set(key string, v Member) {
	d.m.set(key, v)
}

// Get returns the member for key.
func (d *Dictionary) Get(key string) (Member, bool) {
	return d.m.get(key)
}

// Has reports whether key is present.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.m.get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (d *Dictionary) Delete(key string) bool {
	return d.m.delete(key)
}

// Len returns the number of members.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return d.m.len()
}

// Keys returns the keys in order.
func (d *Dictionary) Keys() []string { return d.m.keys() }

// All iterates over the members in order.
func (d *Dictionary) All() iter.Seq2[string, Member] {
	if d == nil {
		return func(func(string, Member) bool) {}
	}
	return d.m.all()
}

// Equal reports whether both hold the same keys in the same order with equal members.
func (d *Dictionary) Equal(other *Dictionary) bool {
	if d == nil || other == nil {
		return d.Len() == other.Len()
	}
	return d.m.equal(&other.m, memberEqual)
}
