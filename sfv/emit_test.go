package sfv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeItem_DecimalParameter(t *testing.T) {
	d, err := NewDecimalFromFloat(13.45655)
	require.NoError(t, err)

	p := NewParameters()
	p.Set("key", Dec(d))
	s, err := NewItemWithParams(Int(99), p).Serialize()
	require.NoError(t, err)
	assert.Equal(t, "99;key=13.457", s)
}

func TestSerializeList_Example(t *testing.T) {
	list := List{
		NewItem(Token("tok")),
		NewInnerListWithParams(
			[]Item{
				NewItemWithParams(Int(99), params("key", Bool(false))),
				NewItem(Str("foo")),
			},
			params("bar", Bool(true)),
		),
	}

	s, err := list.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `tok, (99;key=?0 "foo");bar`, s)
}

func TestSerializeDictionary_Example(t *testing.T) {
	dict := NewDictionary()
	dict.Set("key1", NewItem(Str("apple")))
	dict.Set("key2", NewItem(Bool(true)))
	dict.Set("key3", NewItem(Bool(false)))

	s, err := dict.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `key1="apple", key2, key3=?0`, s)
}

func TestSerializeDictionary_TrueWithParams(t *testing.T) {
	dict := NewDictionary()
	dict.Set("a", NewItemWithParams(Bool(true), params("x", Int(1), "y", Bool(true))))
	dict.Set("b", NewInnerList(NewItem(Bool(true))))

	s, err := dict.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "a;x=1;y, b=(?1)", s)
}

func TestSerializeBareItems(t *testing.T) {
	tests := []struct {
		name string
		bare BareItem
		want string
	}{
		{"integer", Int(42), "42"},
		{"negative integer", Int(-42), "-42"},
		{"max integer", Int(999999999999999), "999999999999999"},
		{"min integer", Int(-999999999999999), "-999999999999999"},
		{"decimal whole", dec("1"), "1.0"},
		{"decimal", dec("1.5"), "1.5"},
		{"decimal three places", dec("-0.123"), "-0.123"},
		{"decimal rounds up", dec("1.2346"), "1.235"},
		{"decimal rounds down", dec("1.2344"), "1.234"},
		{"decimal tie to even down", dec("0.0005"), "0.0"},
		{"decimal tie to even up", dec("0.0015"), "0.002"},
		{"decimal tie even stays", dec("0.0025"), "0.002"},
		{"decimal tie negative", dec("-1.0005"), "-1.0"},
		{"decimal rounds to zero keeps no sign", dec("-0.0001"), "0.0"},
		{"decimal above tie", dec("0.00250001"), "0.003"},
		{"decimal 12 integer digits", dec("999999999999.999"), "999999999999.999"},
		{"decimal just below carry", dec("999999999999.9994"), "999999999999.999"},
		{"string", Str("foo"), `"foo"`},
		{"string escapes", Str(`a"b\c`), `"a\"b\\c"`},
		{"empty string", Str(""), `""`},
		{"token", Token("*foo/bar:baz"), "*foo/bar:baz"},
		{"byte sequence", Bytes([]byte("hello")), ":aGVsbG8=:"},
		{"empty byte sequence", Bytes(nil), "::"},
		{"true", Bool(true), "?1"},
		{"false", Bool(false), "?0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.bare.Serialize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerialize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value FieldValue
	}{
		{"integer too large", NewItem(Int(1_000_000_000_000_000))},
		{"integer too small", NewItem(Int(-1_000_000_000_000_000))},
		{"decimal 13 integer digits", NewItem(dec("1234567890123.5"))},
		{"decimal carries into 13 digits", NewItem(dec("999999999999.9995"))},
		{"string with newline", NewItem(Str("a\nb"))},
		{"string with DEL", NewItem(Str("a\x7f"))},
		{"string with non-ascii", NewItem(Str("café"))},
		{"token starting with digit", NewItem(Token("1abc"))},
		{"token with space", NewItem(Token("a b"))},
		{"empty token", NewItem(Token(""))},
		{"zero bare item", NewItem(BareItem{})},
		{"uppercase param key", NewItemWithParams(Int(1), params("Key", Int(1)))},
		{"empty param key", NewItemWithParams(Int(1), params("", Int(1)))},
		{"invalid param value", NewItemWithParams(Int(1), params("a", Token("?")))},
		{"invalid inner list item", NewInnerList(NewItem(Str("\x00")))},
		{"empty list", List{}},
		{"nil member", List{nil}},
		{"empty dictionary", NewDictionary()},
		{"invalid dictionary key", func() *Dictionary {
			d := NewDictionary()
			d.Set("a b", NewItem(Int(1)))
			return d
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Serialize(tt.value)
			require.Error(t, err)
			assert.Empty(t, s)
			assert.True(t, errors.Is(err, ErrMalformed))

			var se *SerializeError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestSerialize_EmptyField(t *testing.T) {
	_, err := List{}.Serialize()
	assert.True(t, IsEmptyField(err))

	_, err = NewDictionary().Serialize()
	assert.True(t, IsEmptyField(err))

	_, err = NewItem(Token("1")).Serialize()
	assert.False(t, IsEmptyField(err))
}

func TestSerialize_EmptyFieldErrorShape(t *testing.T) {
	_, err := List{}.Serialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyField)
	assert.ErrorIs(t, err, ErrMalformed)

	var se *SerializeError
	require.True(t, errors.As(err, &se))

	// Each failure is its own value; changing one leaves later ones intact.
	se.Message = "changed"
	_, err = NewDictionary().Serialize()
	assert.EqualError(t, err, "sfv: empty list or dictionary is not serialized")
	assert.True(t, IsEmptyField(err))
}

func TestSerialize_InnerList(t *testing.T) {
	s, err := NewInnerList().Serialize()
	require.NoError(t, err)
	assert.Equal(t, "()", s)

	s, err = NewInnerListWithParams([]Item{NewItem(Int(1)), NewItem(Token("a"))}, params("q", dec("0.5"))).Serialize()
	require.NoError(t, err)
	assert.Equal(t, "(1 a);q=0.5", s)
}

func TestSerialize_Parameters(t *testing.T) {
	s, err := params("a", Bool(true), "b", Bool(false), "c", Str("x")).Serialize()
	require.NoError(t, err)
	assert.Equal(t, `;a;b=?0;c="x"`, s)
}

func TestMarshalText(t *testing.T) {
	b, err := NewItem(Int(5)).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5", string(b))

	b, err = List{NewItem(Int(1)), NewItem(Int(2))}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1, 2", string(b))

	d := NewDictionary()
	d.Set("a", NewItem(Int(1)))
	b, err = d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "a=1", string(b))
}

// TestRoundTrip checks that canonical text survives parse then serialize
// unchanged, and that the reparsed value equals the first parse.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		typ   FieldType
		input string
	}{
		{FieldItem, "42"},
		{FieldItem, "-1.5;a;b=?0"},
		{FieldItem, `"he said \"hi\""`},
		{FieldItem, ":AQID:;x=tok"},
		{FieldItem, "*tok/en:1;*k=-999999999999999"},
		{FieldList, `tok, (99;key=?0 "foo");bar`},
		{FieldList, "(), (1);a, ?1"},
		{FieldDictionary, `key1="apple", key2, key3=?0`},
		{FieldDictionary, "a=(1 2 3);q=0.001, b;c=:AA==:"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseField(tt.typ, []byte(tt.input), ParseOptions{})
			require.NoError(t, err)

			out, err := Serialize(v)
			require.NoError(t, err)
			assert.Equal(t, tt.input, out)

			again, err := ParseField(tt.typ, []byte(out), ParseOptions{})
			require.NoError(t, err)
			assert.True(t, fieldValuesEqual(v, again))
		})
	}
}

func TestCanonicalization(t *testing.T) {
	tests := []struct {
		typ   FieldType
		input string
		want  string
	}{
		{FieldList, "1,2,\t3", "1, 2, 3"},
		{FieldList, "(  1   2 )", "(1 2)"},
		{FieldItem, "1; a=?1; b", "1;a;b"},
		{FieldItem, "1.500", "1.5"},
		{FieldItem, "0042", "42"},
		{FieldItem, "-0", "0"},
		{FieldDictionary, "a=?1, b=1, a=?0", "a=?0, b=1"},
		{FieldDictionary, "  a=1  ", "a=1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseField(tt.typ, []byte(tt.input), ParseOptions{})
			require.NoError(t, err)
			out, err := Serialize(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func fieldValuesEqual(a, b FieldValue) bool {
	switch av := a.(type) {
	case Item:
		bv, ok := b.(Item)
		return ok && av.Equal(bv)
	case List:
		bv, ok := b.(List)
		return ok && av.Equal(bv)
	case *Dictionary:
		bv, ok := b.(*Dictionary)
		return ok && av.Equal(bv)
	}
	return false
}
