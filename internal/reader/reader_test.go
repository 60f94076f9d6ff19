package reader

import "testing"

func TestAdvanceTracksLineAndColumn(t *testing.T) {
	r := New("ab\ncd")

	want := []struct {
		r    rune
		line int
		col  int
	}{
		{'a', 1, 2},
		{'b', 1, 3},
		{'\n', 2, 1},
		{'c', 2, 2},
		{'d', 2, 3},
	}

	for i, w := range want {
		ru, ok := r.Advance()
		if !ok {
			t.Fatalf("step %d: unexpected EOF", i)
		}
		if ru != w.r {
			t.Errorf("step %d: got rune %q, want %q", i, ru, w.r)
		}
		pos := r.Pos()
		if pos.Line != w.line || pos.Column != w.col {
			t.Errorf("step %d: got pos %d:%d, want %d:%d", i, pos.Line, pos.Column, w.line, w.col)
		}
	}
	if !r.Eof() {
		t.Error("expected EOF after consuming all input")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := New("xy")
	first, ok := r.Peek()
	if !ok || first != 'x' {
		t.Fatalf("Peek() = %q, %v; want 'x', true", first, ok)
	}
	second, ok := r.Peek()
	if !ok || second != 'x' {
		t.Fatalf("second Peek() = %q, %v; want 'x', true (Peek must not consume)", second, ok)
	}
}

func TestMarkRestoreBacktracks(t *testing.T) {
	r := New("hello")
	r.Advance()
	r.Advance()
	mark := r.Mark()
	r.Advance()
	r.Advance()
	r.Restore(mark)
	ru, _ := r.Peek()
	if ru != 'l' {
		t.Errorf("after Restore, Peek() = %q, want 'l'", ru)
	}
}

func TestSkipWhitespace(t *testing.T) {
	r := New("   \t\nfoo")
	r.SkipWhitespace()
	rest := r.Rest()
	if rest != "foo" {
		t.Errorf("Rest() after SkipWhitespace() = %q, want %q", rest, "foo")
	}
}

func TestPeekNHandlesShortInput(t *testing.T) {
	r := New("ab")
	if got := r.PeekN(5); got != "ab" {
		t.Errorf("PeekN(5) on 2-rune input = %q, want %q", got, "ab")
	}
}
