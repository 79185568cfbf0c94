package confirmation

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
    g := NewGenerator()
    ref, err := g.Generate()
    require.NoError(t, err)

    assert.True(t, strings.HasPrefix(ref, DefaultPrefix))
    assert.Len(t, ref, len(DefaultPrefix)+DefaultLength)
    for _, ch := range ref[len(DefaultPrefix):] {
        assert.Contains(t, alphabet, string(ch), "unexpected character %q in %s", ch, ref)
    }
}

func TestGenerateAvoidsAmbiguousCharacters(t *testing.T) {
    g := NewGenerator()
    for i := 0; i < 200; i++ {
        ref, err := g.Generate()
        require.NoError(t, err)
        assert.NotContains(t, ref[len(DefaultPrefix):], "0")
        assert.NotContains(t, ref[len(DefaultPrefix):], "O")
        assert.NotContains(t, ref[len(DefaultPrefix):], "1")
        assert.NotContains(t, ref[len(DefaultPrefix):], "I")
    }
}

func TestGenerateIsNotRepetitive(t *testing.T) {
    g := NewGenerator()
    seen := make(map[string]bool, 1000)
    for i := 0; i < 1000; i++ {
        ref, err := g.Generate()
        require.NoError(t, err)
        assert.False(t, seen[ref], "duplicate reference %s after %d draws", ref, i)
        seen[ref] = true
    }
}

func TestGeneratorWithCustomPrefix(t *testing.T) {
    g := NewGeneratorWith("ZX", 6)
    ref, err := g.Generate()
    require.NoError(t, err)
    assert.True(t, strings.HasPrefix(ref, "ZX"))
    assert.Len(t, ref, 8)
}
