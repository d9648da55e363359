package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTexts(t *testing.T, src string, ctx Context) []Token {
	t.Helper()
	l := New(src, "/home/u")
	var out []Token
	for {
		tok, err := l.NextToken(ctx)
		require.NoError(t, err)
		if tok.Type == TokenEnd {
			return out
		}
		out = append(out, tok)
	}
}

func TestParensSemicolonAreSingleCharTokens(t *testing.T) {
	toks := tokenTexts(t, "(a; b)", Context{})
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	assert.Equal(t, []TokenType{
		TokenLeftParen, TokenLiteral, TokenSemicolon, TokenLiteral, TokenRightParen,
	}, types)
}

func TestTwoCharOperatorsMatchGreedily(t *testing.T) {
	for _, tc := range []string{"==", "!=", "<=", ">=", "&&", "||", "=>>", "=>", "//"} {
		toks := tokenTexts(t, tc, Context{})
		require.Len(t, toks, 1, "input %q", tc)
		assert.Equal(t, TokenOperator, toks[0].Type)
		assert.Equal(t, tc, toks[0].Text)
	}
}

func TestSlashAfterNumberIsDivisionOperator(t *testing.T) {
	toks := tokenTexts(t, "6/2", Context{})
	require.Len(t, toks, 3)
	assert.Equal(t, TokenLiteral, toks[0].Type)
	assert.Equal(t, "6", toks[0].Text)
	assert.Equal(t, TokenOperator, toks[1].Type)
	assert.Equal(t, "/", toks[1].Text)
	assert.Equal(t, "2", toks[2].Text)
}

func TestContextualDelimiterStaysLiteralInArgs(t *testing.T) {
	toks := tokenTexts(t, "-la", Context{InArgs: true})
	require.Len(t, toks, 1)
	assert.Equal(t, TokenLiteral, toks[0].Type)
	assert.Equal(t, "-la", toks[0].Text)
}

func TestLeadingMinusIsOperatorOutsideArgs(t *testing.T) {
	toks := tokenTexts(t, "- 1", Context{})
	require.Len(t, toks, 2)
	assert.Equal(t, TokenOperator, toks[0].Type)
	assert.Equal(t, "-", toks[0].Text)
}

func TestKeywordsAreCaseInsensitiveAndUppercased(t *testing.T) {
	toks := tokenTexts(t, "while", Context{})
	require.Len(t, toks, 1)
	assert.Equal(t, TokenKeyword, toks[0].Type)
	assert.Equal(t, "WHILE", toks[0].Text)
}

func TestQuotedStringTranslatesKnownEscapes(t *testing.T) {
	toks := tokenTexts(t, `"a\nb\tc"`, Context{})
	require.Len(t, toks, 1)
	assert.Equal(t, "a\nb\tc", toks[0].Text)
	assert.True(t, toks[0].Quoted)
}

func TestQuotedStringDropsBackslashOnUnknownEscape(t *testing.T) {
	toks := tokenTexts(t, `"\w"`, Context{})
	require.Len(t, toks, 1)
	assert.Equal(t, "w", toks[0].Text)
}

func TestUnquotedLiteralPreservesBackslash(t *testing.T) {
	toks := tokenTexts(t, `\w2`, Context{})
	require.Len(t, toks, 1)
	assert.Equal(t, `\w2`, toks[0].Text)
}

func TestUnbalancedQuoteIsAnError(t *testing.T) {
	l := New(`"abc`, "")
	_, err := l.NextToken(Context{})
	assert.Error(t, err)
}

func TestTildeExpandsToHome(t *testing.T) {
	toks := tokenTexts(t, "~/nonexistent-mysh-test-path", Context{})
	require.Len(t, toks, 1)
	assert.Equal(t, "/home/u/nonexistent-mysh-test-path", toks[0].Text)
}
