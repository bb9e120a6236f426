package scanner

import (
	"testing"

	"loxvm/token"
)

func kinds(source string) []token.Kind {
	s := New(source)
	var out []token.Kind
	for {
		tok := s.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.Eof {
			return out
		}
	}
}

func TestScansOperatorsAndLiterals(t *testing.T) {
	got := kinds(`var x = 1 + "two";`)
	want := []token.Kind{
		token.Var, token.Identifier, token.Equal, token.Number,
		token.Plus, token.String, token.Semicolon, token.Eof,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v tokens, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	got := kinds("a == b != c <= d >= e")
	want := []token.Kind{
		token.Identifier, token.EqualEqual, token.Identifier, token.BangEqual,
		token.Identifier, token.LessEqual, token.Identifier, token.GreaterEqual,
		token.Identifier, token.Eof,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestKeywordsAreNotIdentifiers(t *testing.T) {
	s := New("class")
	tok := s.Next()
	if tok.Kind != token.Class {
		t.Fatalf("Kind = %s, want Class", tok.Kind)
	}
}

func TestLineCommentsAreSkipped(t *testing.T) {
	got := kinds("// a comment\nvar")
	if len(got) != 2 || got[0] != token.Var || got[1] != token.Eof {
		t.Fatalf("got %v, want [Var Eof]", got)
	}
}

func TestUnterminatedStringProducesErrorToken(t *testing.T) {
	s := New(`"unterminated`)
	tok := s.Next()
	if tok.Kind != token.Error {
		t.Fatalf("Kind = %s, want Error", tok.Kind)
	}
}
