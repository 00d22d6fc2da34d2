package sfv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameters_SetKeepsPosition(t *testing.T) {
	var p Parameters
	p.Set("a", Int(1))
	p.Set("b", Int(2))
	p.Set("c", Int(3))
	p.Set("a", Str("x"))

	assert.Equal(t, []string{"a", "b", "c"}, p.Keys())
	assert.Equal(t, 3, p.Len())

	v, ok := p.Get("a")
	require.True(t, ok)
	assert.True(t, v.Equal(Str("x")))

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestParameters_Delete(t *testing.T) {
	p := params("a", Int(1), "b", Int(2), "c", Int(3))

	assert.True(t, p.Delete("b"))
	assert.False(t, p.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, p.Keys())

	// Positions after the deleted key stay addressable.
	p.Set("c", Int(30))
	v, _ := p.Get("c")
	assert.True(t, v.Equal(Int(30)))
	assert.Equal(t, []string{"a", "c"}, p.Keys())
}

func TestParameters_AllStopsEarly(t *testing.T) {
	p := params("a", Int(1), "b", Int(2), "c", Int(3))
	var seen []string
	for k := range p.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestParameters_Clone(t *testing.T) {
	p := params("a", Int(1))
	c := p.Clone()
	c.Set("b", Int(2))
	c.Set("a", Int(9))

	assert.Equal(t, 1, p.Len())
	v, _ := p.Get("a")
	assert.True(t, v.Equal(Int(1)))
}

func TestParameters_IndependentOfItem(t *testing.T) {
	var p Parameters
	p.Set("a", Int(1))
	item := NewItemWithParams(Int(99), p)

	p.Set("b", Int(2))
	p.Set("a", Int(7))
	assert.False(t, item.Parameters.Has("b"))
	v, ok := item.Parameters.Get("a")
	require.True(t, ok)
	assert.True(t, v.Equal(Int(1)))

	s, err := item.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "99;a=1", s)
}

func TestParameters_DeleteLeavesCopies(t *testing.T) {
	p := params("a", Int(1), "b", Int(2), "c", Int(3))
	item := NewItemWithParams(Int(1), p)
	inner := NewInnerListWithParams(nil, p)

	assert.True(t, p.Delete("a"))
	p.Set("d", Int(4))

	for _, got := range []Parameters{item.Parameters, inner.Parameters} {
		assert.Equal(t, []string{"a", "b", "c"}, got.Keys())
	}
	s, err := item.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "1;a=1;b=2;c=3", s)
	assert.Equal(t, []string{"b", "c", "d"}, p.Keys())
}

func TestParameters_CopiesGrowSeparately(t *testing.T) {
	p := params("a", Int(1))
	q := p
	p.Set("x", Int(1))
	q.Set("y", Int(2))

	assert.Equal(t, []string{"a", "x"}, p.Keys())
	assert.Equal(t, []string{"a", "y"}, q.Keys())
	assert.False(t, p.Has("y"))
	assert.False(t, q.Has("x"))
}

func TestDictionary_ValueCopyIndependent(t *testing.T) {
	d, err := ParseDictionary([]byte("a=1, b=2"))
	require.NoError(t, err)

	var copied Dictionary
	require.NoError(t, copied.UnmarshalText([]byte("x=1, y=2")))
	snapshot := copied

	copied.Set("z", NewItem(Int(3)))
	assert.True(t, copied.Delete("x"))
	assert.Equal(t, []string{"x", "y"}, snapshot.Keys())
	assert.False(t, snapshot.Has("z"))

	before := *d
	d.Set("c", NewItem(Int(3)))
	assert.Equal(t, 2, before.Len())
	assert.False(t, before.Has("c"))
}

func TestParameters_Equal(t *testing.T) {
	assert.True(t, Parameters{}.Equal(NewParameters()))
	assert.True(t, params("a", Int(1), "b", Int(2)).Equal(params("a", Int(1), "b", Int(2))))
	assert.False(t, params("a", Int(1), "b", Int(2)).Equal(params("b", Int(2), "a", Int(1))))
	assert.False(t, params("a", Int(1)).Equal(params("a", dec("1"))))
}

func TestDictionary_Ordering(t *testing.T) {
	d := NewDictionary()
	d.Set("z", NewItem(Int(1)))
	d.Set("a", NewInnerList())
	d.Set("z", NewItem(Int(2)))

	assert.Equal(t, []string{"z", "a"}, d.Keys())
	assert.True(t, d.Has("a"))

	m, ok := d.Get("z")
	require.True(t, ok)
	assert.True(t, memberEqual(m, NewItem(Int(2))))

	assert.True(t, d.Delete("z"))
	assert.Equal(t, []string{"a"}, d.Keys())
	assert.False(t, d.Has("z"))
}

func TestDictionary_Nil(t *testing.T) {
	var d *Dictionary
	assert.Equal(t, 0, d.Len())
	assert.True(t, d.Equal(NewDictionary()))
	for range d.All() {
		t.Fatal("nil dictionary should not yield")
	}
}

func TestBareItem_Accessors(t *testing.T) {
	n, err := Int(7).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = dec("1.5").AsInt()
	assert.EqualError(t, err, "sfv: expected integer, got decimal")

	d, err := dec("1.5").AsDecimal()
	require.NoError(t, err)
	assert.Equal(t, "1.5", d.String())

	num, err := Int(3).AsNum()
	require.NoError(t, err)
	assert.False(t, num.IsDecimal())
	assert.Equal(t, int64(3), num.Int())

	s, err := Str("x").AsString()
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	_, err = Token("x").AsString()
	assert.EqualError(t, err, "sfv: expected string, got token")

	tok, err := Token("x").AsToken()
	require.NoError(t, err)
	assert.Equal(t, "x", tok)

	b, err := Bytes([]byte{1}).AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, b)

	v, err := Bool(true).AsBool()
	require.NoError(t, err)
	assert.True(t, v)

	_, err = Str("x").AsNum()
	assert.Error(t, err)
}

func TestNum_WrongVariantIsZero(t *testing.T) {
	assert.Equal(t, int64(0), DecNum(MustDecimal("2.5")).Int())
	assert.True(t, IntNum(3).Decimal().Equal(Decimal{}))

	_, err := Dec(MustDecimal("2.5")).AsInt()
	assert.Error(t, err)
	_, err = Int(3).AsDecimal()
	assert.Error(t, err)
}

func TestBareItem_Equal(t *testing.T) {
	assert.True(t, Bytes(nil).Equal(Bytes([]byte{})))
	assert.False(t, Str("a").Equal(Token("a")))
	assert.False(t, Int(1).Equal(dec("1")))
	assert.True(t, Number(IntNum(4)).Equal(Int(4)))
	assert.True(t, Number(DecNum(MustDecimal("0.5"))).Equal(dec("0.50")))
	assert.True(t, BareItem{}.Equal(BareItem{}))
}

func TestMember_Params(t *testing.T) {
	var m Member = NewItemWithParams(Int(1), params("a", Int(2)))
	assert.Equal(t, []string{"a"}, m.Params().Keys())

	m = NewInnerListWithParams(nil, params("b", Int(2)))
	assert.Equal(t, []string{"b"}, m.Params().Keys())
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidKey("a"))
	assert.True(t, ValidKey("*"))
	assert.True(t, ValidKey("a1_-.*"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("1a"))
	assert.False(t, ValidKey("aB"))
	assert.False(t, ValidKey("_a"))

	assert.True(t, ValidToken("A"))
	assert.True(t, ValidToken("*"))
	assert.True(t, ValidToken("a!#$%&'*+-.^_`|~:/9"))
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken("9a"))
	assert.False(t, ValidToken("a\"b"))
	assert.False(t, ValidToken("a(b"))

	assert.True(t, ValidString(""))
	assert.True(t, ValidString(` ~"\`))
	assert.False(t, ValidString("\x1f"))
	assert.False(t, ValidString("\x7f"))
}
