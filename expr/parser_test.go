package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Empty expression means match nothing", func(t *testing.T) {
		predicate, err := Parse("")
		assert.NoError(t, err, "Expected empty expression to be valid")
		assert.Nil(t, predicate, "Expected nil predicate for empty expression")

		predicate, err = Parse("   \t\n ")
		assert.NoError(t, err, "Expected blank expression to be valid")
		assert.Nil(t, predicate)
	})

	t.Run("Simple equality", func(t *testing.T) {
		predicate, err := Parse(`era = "ww1"`)
		require.NoError(t, err)
		require.NotNil(t, predicate)
		assert.Equal(t, `era = "ww1"`, predicate.String())
	})

	t.Run("Whitespace insensitive", func(t *testing.T) {
		compact, err := Parse(`era="ww1"AND country exists`)
		require.NoError(t, err)
		spread, err := Parse("  era  =  \"ww1\"\n\tAND country\texists ")
		require.NoError(t, err)
		assert.Equal(t, compact.String(), spread.String())
	})

	t.Run("Precedence OR lower than AND", func(t *testing.T) {
		predicate, err := Parse(`a = "1" OR b = "2" AND c = "3"`)
		require.NoError(t, err)
		assert.Equal(t, `(a = "1" OR (b = "2" AND c = "3"))`, predicate.String())
	})

	t.Run("Parentheses override precedence", func(t *testing.T) {
		predicate, err := Parse(`(a = "1" OR b = "2") AND c = "3"`)
		require.NoError(t, err)
		assert.Equal(t, `((a = "1" OR b = "2") AND c = "3")`, predicate.String())
	})

	t.Run("NOT binds tighter than AND", func(t *testing.T) {
		predicate, err := Parse(`NOT a exists AND b exists`)
		require.NoError(t, err)
		assert.Equal(t, `(NOT a exists AND b exists)`, predicate.String())
	})

	t.Run("Keywords are case-insensitive", func(t *testing.T) {
		predicate, err := Parse(`era = "ww1" and country EXISTS or conflict not Exists`)
		require.NoError(t, err)
		require.NotNil(t, predicate)
	})

	t.Run("Tag names are case-sensitive", func(t *testing.T) {
		predicate, err := Parse(`Era exists`)
		require.NoError(t, err)
		assert.Equal(t, "Era exists", predicate.String())
	})

	t.Run("String escapes", func(t *testing.T) {
		predicate, err := Parse(`quote = "a \"b\" \\ c"`)
		require.NoError(t, err)
		assert.True(t, predicate.Eval(tags(namedTag("quote", `a "b" \ c`))))
	})

	t.Run("Quoted tag names allow keyword spellings", func(t *testing.T) {
		predicate, err := Parse(`"not" = "x"`)
		require.NoError(t, err)
		assert.True(t, predicate.Eval(tags(namedTag("not", "x"))))
		assert.False(t, predicate.Eval(tags(namedTag("not", "y"))))

		predicate, err = Parse(`"exists" exists`)
		require.NoError(t, err)
		assert.True(t, predicate.Eval(tags(namedTag("exists", "anything"))))
		assert.False(t, predicate.Eval(tags(namedTag("other", "anything"))))
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("Unterminated string", func(t *testing.T) {
		_, err := Parse(`era = "ww1`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "Expected a *ParseError")
		assert.Contains(t, parseErr.Reason, "unterminated string")
		assert.Equal(t, 6, parseErr.Position, "Expected position of the opening quote")
	})

	t.Run("Missing value after equals", func(t *testing.T) {
		_, err := Parse(`era = `)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "expected quoted string")
	})

	t.Run("Unbalanced parentheses", func(t *testing.T) {
		_, err := Parse(`(era = "ww1" AND country exists`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "unbalanced parentheses")
		assert.Equal(t, 0, parseErr.Position)
	})

	t.Run("Unknown operator", func(t *testing.T) {
		_, err := Parse(`era ! "ww1"`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "unknown operator")
	})

	t.Run("Trailing input", func(t *testing.T) {
		_, err := Parse(`era = "ww1" country`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "after end of expression")
	})

	t.Run("Bare NOT", func(t *testing.T) {
		_, err := Parse(`NOT`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "unexpected end of expression")
	})

	t.Run("Missing comparison after tag name", func(t *testing.T) {
		_, err := Parse(`era AND country exists`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Reason, "after tag name")
	})
}

func TestCache(t *testing.T) {
	t.Run("Parses through and caches", func(t *testing.T) {
		cache := NewCache()

		first, err := cache.Parse(`era = "ww1"`)
		require.NoError(t, err)
		second, err := cache.Parse(`era = "ww1"`)
		require.NoError(t, err)

		assert.Equal(t, first, second, "Expected the cached predicate on second parse")
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("Empty expression is not cached", func(t *testing.T) {
		cache := NewCache()

		predicate, err := cache.Parse("")
		assert.NoError(t, err)
		assert.Nil(t, predicate)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("Parse failure is returned every time", func(t *testing.T) {
		cache := NewCache()

		_, err := cache.Parse(`era = `)
		assert.Error(t, err)
		_, err = cache.Parse(`era = `)
		assert.Error(t, err)
		assert.Equal(t, 0, cache.Len())
	})
}
