package extract

import "testing"

func TestTokenize_RuleLine(t *testing.T) {
	toks := Tokenize("rule key ArrowRight player1 -> move_right")
	wantTypes := []TokenType{TokenSymbol, TokenSymbol, TokenSymbol, TokenSymbol, TokenArrow, TokenSymbol}
	if len(toks) != len(wantTypes) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(wantTypes), len(toks), toks)
	}
	for i, want := range wantTypes {
		if toks[i].Type != want {
			t.Errorf("Token %d: expected type %v, got %v", i, want, toks[i].Type)
		}
	}
	if toks[4].Literal != "->" {
		t.Errorf("Expected arrow literal '->', got %q", toks[4].Literal)
	}
}

func TestTokenize_SpawnLine(t *testing.T) {
	toks := Tokenize(`spawn Player p1 (x=4, name="a b", speed=-1.5)`)
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []TokenType{
		TokenSymbol, TokenSymbol, TokenSymbol, TokenLParen,
		TokenSymbol, TokenAssign, TokenNumber, TokenComma,
		TokenSymbol, TokenAssign, TokenString, TokenComma,
		TokenSymbol, TokenAssign, TokenMinus, TokenNumber,
		TokenRParen,
	}
	if len(types) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(types), toks)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Token %d: expected %v, got %v (%q)", i, want[i], types[i], toks[i].Literal)
		}
	}
	if toks[10].Literal != "a b" {
		t.Errorf("Expected string literal 'a b', got %q", toks[10].Literal)
	}
	if toks[15].Literal != "1.5" {
		t.Errorf("Expected number '1.5', got %q", toks[15].Literal)
	}
}

func TestTokenize_Comment(t *testing.T) {
	toks := Tokenize("actor Player: # the hero")
	if len(toks) != 3 {
		t.Fatalf("Expected comment to end line, got %v", toks)
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	toks := Tokenize(`name = "line\nbreak \"quoted\""`)
	if len(toks) != 3 || toks[2].Type != TokenString {
		t.Fatalf("Unexpected tokens: %v", toks)
	}
	if toks[2].Literal != "line\nbreak \"quoted\"" {
		t.Errorf("Unexpected unescaped literal: %q", toks[2].Literal)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if toks := Tokenize("   # only a comment"); len(toks) != 0 {
		t.Errorf("Expected no tokens, got %v", toks)
	}
}
