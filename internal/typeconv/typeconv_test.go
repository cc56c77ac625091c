package typeconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	cases := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"whole float64", float64(42), 42, false},
		{"negative whole float64", float64(-7), -7, false},
		{"native int", 9, 9, false},
		{"fractional float64", 3.5, 0, true},
		{"string", "5", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToInt(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsWholeNumber(t *testing.T) {
	assert.True(t, IsWholeNumber(float64(10)))
	assert.False(t, IsWholeNumber(10.5))
	assert.True(t, IsWholeNumber(10))
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "string", KindName("x"))
	assert.Equal(t, "bool", KindName(true))
	assert.Equal(t, "int", KindName(float64(3)))
	assert.Equal(t, "float", KindName(3.5))
	assert.Equal(t, "mapping", KindName(map[string]any{}))
	assert.Equal(t, "list", KindName([]any{}))
}
