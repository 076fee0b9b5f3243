package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFindAllModes(t *testing.T) {
	tests := []struct {
		name          string
		pattern       string
		useRegex      bool
		caseSensitive bool
		text          string
		wantOffsets   []int
	}{
		{"literal insensitive", "hello", false, false, "Hello hello HELLO", []int{0, 6, 12}},
		{"literal sensitive", "hello", false, true, "Hello hello HELLO", []int{6}},
		{"non-overlapping", "aa", false, true, "aaaa", []int{0, 2}},
		{"regex", `err(or)?`, true, true, "error err", []int{0, 6}},
		{"regex insensitive", `^todo`, true, false, "TODO one\nnot todo\ntodo two", []int{0, 18}},
		{"literal metacharacters", "a.b", false, false, "axb a.b", []int{4}},
		{"unicode folding", "école", false, false, "ÉCOLE école", []int{0, 7}},
		{"no match", "absent", false, false, "nothing here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern, tt.useRegex, tt.caseSensitive)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.pattern, err)
			}
			matches, err := p.FindAll(context.Background(), tt.text, 0)
			if err != nil {
				t.Fatalf("FindAll error: %v", err)
			}
			if len(matches) != len(tt.wantOffsets) {
				t.Fatalf("got %d matches, want %d (%+v)", len(matches), len(tt.wantOffsets), matches)
			}
			for i, m := range matches {
				if m.Offset != tt.wantOffsets[i] {
					t.Errorf("match %d offset = %d, want %d", i, m.Offset, tt.wantOffsets[i])
				}
				if m.Context != "" {
					t.Errorf("match %d has context %q without previews", i, m.Context)
				}
			}
		})
	}
}

func TestCaseSensitiveIsSubsetOfInsensitive(t *testing.T) {
	text := "Alpha alpha ALPHA\nalpHa beta alpha"
	sensitive, _ := Compile("alpha", false, true)
	insensitive, _ := Compile("alpha", false, false)

	s, _ := sensitive.FindAll(context.Background(), text, 0)
	i, _ := insensitive.FindAll(context.Background(), text, 0)
	if len(s) > len(i) {
		t.Fatalf("case-sensitive found %d matches, more than case-insensitive %d", len(s), len(i))
	}

	offsets := make(map[int]bool)
	for _, m := range i {
		offsets[m.Offset] = true
	}
	for _, m := range s {
		if !offsets[m.Offset] {
			t.Errorf("case-sensitive match at %d missing from case-insensitive results", m.Offset)
		}
	}
}

func TestFindAllLineNumbers(t *testing.T) {
	p, _ := Compile("foo", false, true)
	matches, err := p.FindAll(context.Background(), "a\nfoo\nbar foo", 0)
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	want := []Match{{Offset: 2, Line: 2}, {Offset: 10, Line: 3}}
	if len(matches) != len(want) {
		t.Fatalf("got %+v, want %+v", matches, want)
	}
	for i := range want {
		if matches[i] != want[i] {
			t.Errorf("match %d = %+v, want %+v", i, matches[i], want[i])
		}
	}
}

func TestCompileInvalid(t *testing.T) {
	for _, pattern := range []string{"", "(["} {
		_, err := Compile(pattern, true, false)
		var perr *PatternError
		if !errors.As(err, &perr) {
			t.Errorf("Compile(%q) error = %v, want *PatternError", pattern, err)
		}
	}
	if _, err := Compile("([", false, false); err != nil {
		t.Errorf("literal pattern with metacharacters should compile, got %v", err)
	}
}

func TestContextWindow(t *testing.T) {
	p, _ := Compile("brown", false, true)
	matches, _ := p.FindAll(context.Background(), "the quick brown fox", 4)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if got, want := matches[0].Context, "ick brown fox"; got != want {
		t.Errorf("context = %q, want %q", got, want)
	}

	// Window start falls inside a two-byte rune and must widen to its start.
	matches, _ = p.FindAll(context.Background(), "éé brown", 2)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if got := matches[0].Context; !utf8.ValidString(got) || got != "é brown" {
		t.Errorf("context = %q, want %q", got, "é brown")
	}
}

func TestContextFlattensLineBreaks(t *testing.T) {
	p, _ := Compile("needle", false, true)
	matches, _ := p.FindAll(context.Background(), "one\ttwo\r\nneedle\nthree", 10)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if strings.ContainsAny(matches[0].Context, "\r\n\t") {
		t.Errorf("context %q still contains line breaks", matches[0].Context)
	}
}

func TestFindAllTimeout(t *testing.T) {
	p, _ := Compile("x", false, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FindAll(ctx, strings.Repeat("x\n", 1000), 0)
	if !errors.Is(err, ErrPatternTimeout) {
		t.Fatalf("error = %v, want ErrPatternTimeout", err)
	}
}

var benchMatches []Match

func benchmarkText() string {
	const targetSize = 1 << 20 // ~1MB
	var sb strings.Builder
	sb.Grow(targetSize + 128)
	sb.WriteString("This is a benchmark file containing motor and vehicles early.\n")
	fill := "lorem ipsum dolor sit amet consectetur adipiscing elit\n"
	for sb.Len() < targetSize {
		sb.WriteString(fill)
	}
	sb.WriteString("the motor appears again at the end\n")
	return sb.String()
}

func BenchmarkFindAll_Literal(b *testing.B) {
	text := benchmarkText()
	p, err := Compile("motor", false, true)
	if err != nil {
		b.Fatalf("compile: %v", err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchMatches, _ = p.FindAll(context.Background(), text, 0)
	}
}

func BenchmarkFindAll_RegexInsensitive(b *testing.B) {
	text := benchmarkText()
	p, err := Compile(`mot(or|ion)`, true, false)
	if err != nil {
		b.Fatalf("compile: %v", err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchMatches, _ = p.FindAll(context.Background(), text, 40)
	}
}

func TestHighlight(t *testing.T) {
	p, _ := Compile("go", false, false)
	got := p.Highlight("Go and go", func(s string) string { return "[" + s + "]" })
	if want := "[Go] and [go]"; got != want {
		t.Errorf("Highlight = %q, want %q", got, want)
	}
}

func TestFindAllSkipsZeroWidth(t *testing.T) {
	for _, pattern := range []string{"x*", "^", `\b`} {
		p, err := Compile(pattern, true, false)
		if err != nil {
			t.Fatalf("Compile(%q): %v", pattern, err)
		}
		matches, err := p.FindAll(context.Background(), "abc\nxxd\n\n", 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, m := range matches {
			if m.Line != 2 || m.Offset != 4 {
				t.Errorf("%q: unexpected match %+v", pattern, m)
			}
		}
		want := 0
		if pattern == "x*" {
			want = 1
		}
		if len(matches) != want {
			t.Errorf("%q: got %d matches, want %d", pattern, len(matches), want)
		}
	}
}
