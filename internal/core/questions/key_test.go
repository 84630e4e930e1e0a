package questions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Define X", "define x"},
		{"collapses whitespace", "  define \t  x\n", "define x"},
		{"drops trailing question mark", "Define X?", "define x"},
		{"drops trailing punctuation run", "What is osmosis ?!", "what is osmosis"},
		{"keeps inner punctuation", "State Newton's 2nd law, with an example.", "state newton's 2nd law, with an example"},
		{"empty", "   ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Key(tc.input))
		})
	}
}

func TestKey_CaseAndWhitespaceVariantsCollide(t *testing.T) {
	variants := []string{"Explain the Water Cycle", "explain  the water cycle", "\tEXPLAIN THE WATER CYCLE  "}
	for _, v := range variants {
		assert.Equal(t, Key(variants[0]), Key(v))
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Define X", "define x ", "", "  ", "Explain  Y", "explain y?", "Define X"})
	assert.Equal(t, []string{"Define X", "Explain Y"}, got)
}

func TestDedupe_PreservesFirstSeenOrder(t *testing.T) {
	got := Dedupe([]string{"b question", "a question", "B QUESTION"})
	assert.Equal(t, []string{"b question", "a question"}, got)
}

func TestIsNoise(t *testing.T) {
	assert.True(t, IsNoise(" a "))
	assert.True(t, IsNoise("Q1"))
	assert.False(t, IsNoise("Why"))
	assert.True(t, IsNoise("é "))
}
