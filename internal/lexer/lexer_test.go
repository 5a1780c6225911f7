package lexer_test

import (
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/lexer"
	"github.com/andreasronge/ptc-runner-sub009/internal/token"
)

func tokenKinds(t *testing.T, source string) []token.Kind {
	t.Helper()
	l := lexer.New(source)
	var kinds []token.Kind
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken(%q): %v", source, err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			return kinds
		}
	}
}

func TestNextTokenDelimitersAndReaderMacros(t *testing.T) {
	got := tokenKinds(t, `( ) [ ] { } #{ #( #'`)
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET,
		token.LBRACE, token.RBRACE, token.HASHBRACE, token.HASHPAREN, token.HASHQUOTE,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenNumberLiterals(t *testing.T) {
	testCases := []struct {
		source string
		want   token.Kind
	}{
		{"42", token.INT},
		{"-7", token.INT},
		{"3.14", token.FLOAT},
		{"1e10", token.FLOAT},
		{"1.5e-3", token.FLOAT},
	}
	for _, tc := range testCases {
		l := lexer.New(tc.source)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken(%q): %v", tc.source, err)
		}
		if tok.Kind != tc.want {
			t.Errorf("NextToken(%q).Kind = %v, want %v", tc.source, tok.Kind, tc.want)
		}
		if tok.Lexeme != tc.source {
			t.Errorf("NextToken(%q).Lexeme = %q, want %q", tc.source, tok.Lexeme, tc.source)
		}
	}
}

func TestNextTokenStringAndKeyword(t *testing.T) {
	l := lexer.New(`"hi" :foo`)
	tok, err := l.NextToken()
	if err != nil || tok.Kind != token.STRING || tok.Lexeme != "hi" {
		t.Fatalf("got %+v, %v, want STRING{hi}", tok, err)
	}
	tok, err = l.NextToken()
	if err != nil || tok.Kind != token.KEYWORD || tok.Lexeme != "foo" {
		t.Fatalf("got %+v, %v, want KEYWORD{foo}", tok, err)
	}
}

func TestNextTokenSkipsCommentsAndCommas(t *testing.T) {
	got := tokenKinds(t, "1, 2 ; a trailing comment\n3")
	want := []token.Kind{token.INT, token.INT, token.INT, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextTokenUnexpectedCharacterIsError(t *testing.T) {
	l := lexer.New("@")
	if _, err := l.NextToken(); err == nil {
		t.Fatal("NextToken(@) = nil error, want a lexer error")
	}
}

func TestNextTokenTracksLineAndColumn(t *testing.T) {
	l := lexer.New("1\n22")
	first, err := l.NextToken()
	if err != nil {
		t.Fatalf("NextToken: %v", err)
	}
	if first.Line != 1 {
		t.Errorf("first.Line = %d, want 1", first.Line)
	}
	second, err := l.NextToken()
	if err != nil {
		t.Fatalf("NextToken: %v", err)
	}
	if second.Line != 2 {
		t.Errorf("second.Line = %d, want 2", second.Line)
	}
}
