package sfv

import (
	"bytes"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ============================================================
// JSON bridge
// ============================================================
//
// Converts values to and from the JSON shape used by the shared structured
// field test suite:
//
//	item        [bare, params]
//	inner list  [[item, ...], params]
//	params      [[key, bare], ...]
//	list        [member, ...]
//	dictionary  [[key, member], ...]
//	token       {"__type": "token", "value": "abc"}
//	byte seq    {"__type": "binary", "value": "<base32>"}
//
// Numbers keep their exact text; a literal with a fractional part is a Decimal.

// FieldType names one of the three top-level shapes.
type FieldType string

const (
	FieldItem       FieldType = "item"
	FieldList       FieldType = "list"
	FieldDictionary FieldType = "dictionary"
)

// ParseFieldType accepts the shape names used by the test suite and the CLI.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "item":
		return FieldItem, nil
	case "list":
		return FieldList, nil
	case "dictionary", "dict":
		return FieldDictionary, nil
	}
	return "", fmt.Errorf("sfv: unknown field type %q", s)
}

// ParseField parses data as the given shape.
func ParseField(typ FieldType, data []byte, opts ParseOptions) (FieldValue, error) {
	p := NewParser(data, opts)
	switch typ {
	case FieldItem:
		return fieldValue(p.ParseItem())
	case FieldList:
		return fieldValue(p.ParseList())
	case FieldDictionary:
		return fieldValue(p.ParseDictionary())
	}
	return nil, fmt.Errorf("sfv: unknown field type %q", typ)
}

// ParseFieldLines parses a field that arrived as several field lines. The first
// line starts the value and every later line is folded in with ParseMore. Items
// cannot be split across lines.
func ParseFieldLines(typ FieldType, lines [][]byte, opts ParseOptions) (FieldValue, error) {
	if len(lines) == 0 {
		return nil, &ParseError{Message: "no field lines"}
	}
	if typ == FieldItem && len(lines) > 1 {
		return nil, &ParseError{Message: "item fields cannot span lines"}
	}
	v, err := ParseField(typ, lines[0], opts)
	if err != nil {
		return nil, err
	}
	for _, line := range lines[1:] {
		switch val := v.(type) {
		case List:
			if err := val.ParseMoreWithOptions(line, opts); err != nil {
				return nil, err
			}
			v = val
		case *Dictionary:
			if err := val.ParseMoreWithOptions(line, opts); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

// fieldValue keeps a failed result from becoming a non-nil interface.
func fieldValue[T FieldValue](v T, err error) (FieldValue, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ToJSON converts an Item, List or *Dictionary to test-suite JSON.
func ToJSON(v FieldValue) ([]byte, error) {
	var out any
	var err error
	switch val := v.(type) {
	case Item:
		out, err = itemToJSON(val)
	case InnerList:
		out, err = innerListToJSON(val)
	case List:
		out, err = listToJSON(val)
	case *Dictionary:
		out, err = dictToJSON(val)
	default:
		return nil, fmt.Errorf("sfv: cannot convert %T to JSON", v)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// FromJSON converts test-suite JSON of the given shape back to a value.
func FromJSON(typ FieldType, data []byte) (FieldValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("sfv: JSON parse error: %w", err)
	}

	switch typ {
	case FieldItem:
		return fieldValue(itemFromJSON(raw))
	case FieldList:
		return fieldValue(listFromJSON(raw))
	case FieldDictionary:
		return fieldValue(dictFromJSON(raw))
	}
	return nil, fmt.Errorf("sfv: unknown field type %q", typ)
}

// ============================================================
// Value -> JSON
// ============================================================

type typedJSON struct {
	Type  string `json:"__type"`
	Value string `json:"value"`
}

func bareToJSON(b BareItem) (any, error) {
	switch b.kind {
	case KindNumber:
		if b.num.decimal {
			return json.Number(b.num.d.String()), nil
		}
		return json.Number(strconv.FormatInt(b.num.i, 10)), nil
	case KindString:
		return b.strVal, nil
	case KindToken:
		return typedJSON{Type: "token", Value: b.strVal}, nil
	case KindByteSeq:
		return typedJSON{Type: "binary", Value: base32.StdEncoding.EncodeToString(b.bytes)}, nil
	case KindBoolean:
		return b.boolVal, nil
	}
	return nil, fmt.Errorf("sfv: bare item has no value")
}

func paramsToJSON(p Parameters) (any, error) {
	out := make([]any, 0, p.Len())
	for k, v := range p.All() {
		jv, err := bareToJSON(v)
		if err != nil {
			return nil, err
		}
		out = append(out, []any{k, jv})
	}
	return out, nil
}

func itemToJSON(i Item) (any, error) {
	bare, err := bareToJSON(i.Bare)
	if err != nil {
		return nil, err
	}
	params, err := paramsToJSON(i.Parameters)
	if err != nil {
		return nil, err
	}
	return []any{bare, params}, nil
}

func innerListToJSON(l InnerList) (any, error) {
	items := make([]any, 0, len(l.Items))
	for _, it := range l.Items {
		ji, err := itemToJSON(it)
		if err != nil {
			return nil, err
		}
		items = append(items, ji)
	}
	params, err := paramsToJSON(l.Parameters)
	if err != nil {
		return nil, err
	}
	return []any{items, params}, nil
}

func memberToJSON(m Member) (any, error) {
	switch v := m.(type) {
	case Item:
		return itemToJSON(v)
	case InnerList:
		return innerListToJSON(v)
	}
	return nil, fmt.Errorf("sfv: unknown member type %T", m)
}

func listToJSON(l List) (any, error) {
	out := make([]any, 0, len(l))
	for _, m := range l {
		jm, err := memberToJSON(m)
		if err != nil {
			return nil, err
		}
		out = append(out, jm)
	}
	return out, nil
}

func dictToJSON(d *Dictionary) (any, error) {
	out := make([]any, 0, d.Len())
	for k, m := range d.All() {
		jm, err := memberToJSON(m)
		if err != nil {
			return nil, err
		}
		out = append(out, []any{k, jm})
	}
	return out, nil
}

// ============================================================
// JSON -> value
// ============================================================

func pairFromJSON(raw any, what string) (any, any, error) {
	arr, ok := raw.([]any)
	if !ok || len(arr) != 2 {
		return nil, nil, fmt.Errorf("sfv: %s must be a two-element array", what)
	}
	return arr[0], arr[1], nil
}

func bareFromJSON(raw any) (BareItem, error) {
	switch v := raw.(type) {
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			d, err := NewDecimalFromString(s)
			if err != nil {
				f, ferr := v.Float64()
				if ferr != nil {
					return BareItem{}, err
				}
				if d, err = NewDecimalFromFloat(f); err != nil {
					return BareItem{}, err
				}
			}
			return Dec(d), nil
		}
		n, err := v.Int64()
		if err != nil {
			return BareItem{}, fmt.Errorf("sfv: integer %s: %w", s, err)
		}
		return Int(n), nil
	case string:
		return Str(v), nil
	case bool:
		return Bool(v), nil
	case map[string]any:
		typ, _ := v["__type"].(string)
		val, _ := v["value"].(string)
		switch typ {
		case "token":
			return Token(val), nil
		case "binary":
			b, err := base32.StdEncoding.DecodeString(val)
			if err != nil {
				return BareItem{}, fmt.Errorf("sfv: binary value: %w", err)
			}
			return Bytes(b), nil
		}
		return BareItem{}, fmt.Errorf("sfv: unsupported typed value %q", typ)
	}
	return BareItem{}, fmt.Errorf("sfv: unsupported JSON value %T", raw)
}

func paramsFromJSON(raw any) (Parameters, error) {
	arr, ok := raw.([]any)
	if !ok {
		return Parameters{}, fmt.Errorf("sfv: parameters must be an array")
	}
	var p Parameters
	for _, e := range arr {
		k, v, err := pairFromJSON(e, "parameter")
		if err != nil {
			return Parameters{}, err
		}
		key, ok := k.(string)
		if !ok {
			return Parameters{}, fmt.Errorf("sfv: parameter key must be a string")
		}
		b, err := bareFromJSON(v)
		if err != nil {
			return Parameters{}, err
		}
		p.m.put(key, b)
	}
	return p, nil
}

func itemFromJSON(raw any) (Item, error) {
	b, p, err := pairFromJSON(raw, "item")
	if err != nil {
		return Item{}, err
	}
	bare, err := bareFromJSON(b)
	if err != nil {
		return Item{}, err
	}
	params, err := paramsFromJSON(p)
	if err != nil {
		return Item{}, err
	}
	return Item{Bare: bare, Parameters: params}, nil
}

func memberFromJSON(raw any) (Member, error) {
	first, p, err := pairFromJSON(raw, "member")
	if err != nil {
		return nil, err
	}
	rawItems, ok := first.([]any)
	if !ok {
		return itemFromJSON(raw)
	}
	items := make([]Item, 0, len(rawItems))
	for _, ri := range rawItems {
		it, err := itemFromJSON(ri)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	params, err := paramsFromJSON(p)
	if err != nil {
		return nil, err
	}
	return InnerList{Items: items, Parameters: params}, nil
}

func listFromJSON(raw any) (List, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("sfv: list must be an array")
	}
	list := make(List, 0, len(arr))
	for _, e := range arr {
		m, err := memberFromJSON(e)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, nil
}

func dictFromJSON(raw any) (*Dictionary, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("sfv: dictionary must be an array")
	}
	d := NewDictionary()
	for _, e := range arr {
		k, v, err := pairFromJSON(e, "dictionary member")
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("sfv: dictionary key must be a string")
		}
		m, err := memberFromJSON(v)
		if err != nil {
			return nil, err
		}
		d.m.put(key, m)
	}
	return d, nil
}
