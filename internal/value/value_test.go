package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseClassifiesTokenText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Value
	}{
		{"integer", "42", Int(42)},
		{"negative integer", "-7", Int(-7)},
		{"real", "3.14", Real(3.14)},
		{"bareword", "hello", Str("hello")},
		{"empty", "", Str("")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Parse(c.in)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", c.in, diff)
			}
		})
	}
}

func TestValueBoolProjection(t *testing.T) {
	assert.True(t, Int(1).Bool())
	assert.False(t, Int(0).Bool())
	assert.True(t, Str("anything").Bool())
	assert.True(t, Real(0.1).Bool())
}

func TestStatusCheckAndNegate(t *testing.T) {
	ok := NewStatus("true", Int(0), nil, nil)
	assert.NoError(t, ok.Check())
	assert.True(t, ok.Checked)

	failing := NewStatus("false", Int(1), assertErr("boom"), nil)
	assert.Error(t, failing.Check())

	negated := NewStatus("false", Int(1), assertErr("boom"), nil).Negate()
	assert.NoError(t, negated.Check())
	assert.True(t, negated.Negated)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
