package sysprop

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEnv(kv ...string) Option {
	return WithEnvironment(FromEnvironment(kv))
}

func TestLookupPrefersDefinitions(t *testing.T) {
	t.Parallel()

	p := New(fixedEnv("color=env", "bell=off"))
	require.NoError(t, p.Set("color", "def"))

	got, ok := p.Lookup("color")
	require.True(t, ok)
	assert.Equal(t, "def", got)

	got, ok = p.Lookup("bell")
	require.True(t, ok)
	assert.Equal(t, "off", got)

	_, ok = p.Lookup("missing")
	assert.False(t, ok)
}

func TestUnsetRevealsEnvironment(t *testing.T) {
	t.Parallel()

	p := New(fixedEnv("color=env"), WithDefinitions(map[string]string{"color": "def"}))
	p.Unset("color")

	got, ok := p.Lookup("color")
	require.True(t, ok)
	assert.Equal(t, "env", got)
}

func TestGetenvIgnoresDefinitions(t *testing.T) {
	t.Parallel()

	p := New(fixedEnv(), WithDefinitions(map[string]string{"LC_CTYPE": "C.UTF-8"}))

	_, ok := p.Getenv("LC_CTYPE")
	assert.False(t, ok)
}

func TestEmptyValueIsDefined(t *testing.T) {
	t.Parallel()

	p := New(fixedEnv())
	require.NoError(t, p.Set("flag", ""))

	got, ok := p.Lookup("flag")
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestSetRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	p := New()
	assert.ErrorIs(t, p.Set("", "x"), ErrInvalidDefinition)
}

func TestDefinitionsReturnsCopy(t *testing.T) {
	t.Parallel()

	p := New(WithDefinitions(map[string]string{"b": "2", "a": "1"}))

	defs := p.Definitions()
	defs["a"] = "mutated"

	got, _ := p.Lookup("a")
	assert.Equal(t, "1", got)
	assert.Equal(t, []string{"a", "b"}, p.Keys())
}

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw       string
		wantKey   string
		wantValue string
		wantErr   error
	}{
		{raw: "a=b", wantKey: "a", wantValue: "b"},
		{raw: "a=b=c", wantKey: "a", wantValue: "b=c"},
		{raw: "flag", wantKey: "flag", wantValue: ""},
		{raw: "a=", wantKey: "a", wantValue: ""},
		{raw: "=b", wantErr: ErrInvalidDefinition},
		{raw: "", wantErr: ErrInvalidDefinition},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			key, value, err := ParseDefinition(tc.raw)
			if tc.wantErr != nil {
				require.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKey, key)
			assert.Equal(t, tc.wantValue, value)
		})
	}
}

func TestFromEnvironmentSkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	lookup := FromEnvironment([]string{"A=1", "broken", "B="})

	v, ok := lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = lookup("broken")
	assert.False(t, ok)

	v, ok = lookup("B")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestPropertiesConcurrentAccess(t *testing.T) {
	p := New(fixedEnv())
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(n int) {
			defer wg.Done()
			if err := p.Set(fmt.Sprintf("k%d", n), "v"); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}(i)

		go func(n int) {
			defer wg.Done()
			_, _ = p.Lookup(fmt.Sprintf("k%d", n))
		}(i)
	}

	wg.Wait()
	assert.Len(t, p.Keys(), 32)
}
