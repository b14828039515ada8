package util

import "testing"

func TestSplice(t *testing.T) {
	tests := []struct {
		name        string
		b           []byte
		start       int
		end         int
		replacement []byte
		expected    []byte
	}{
		{
			name:        "Replace in middle",
			b:           []byte("abcdefg"),
			start:       2,
			end:         5,
			replacement: []byte("XYZ"),
			expected:    []byte("abXYZfg"),
		},
		{
			name:        "Insert at beginning",
			b:           []byte("def"),
			start:       0,
			end:         0,
			replacement: []byte("abc"),
			expected:    []byte("abcdef"),
		},
		{
			name:        "Insert at end",
			b:           []byte("abc"),
			start:       3,
			end:         3,
			replacement: []byte("def"),
			expected:    []byte("abcdef"),
		},
		{
			name:        "Delete in middle",
			b:           []byte("abcdefg"),
			start:       2,
			end:         5,
			replacement: []byte(""),
			expected:    []byte("abfg"),
		},
		{
			name:        "Replace entire slice",
			b:           []byte("abcdefg"),
			start:       0,
			end:         7,
			replacement: []byte("XYZ"),
			expected:    []byte("XYZ"),
		},
		{
			name:        "Empty original, insert",
			b:           []byte(""),
			start:       0,
			end:         0,
			replacement: []byte("abc"),
			expected:    []byte("abc"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Splice(tt.b, tt.start, tt.end, tt.replacement)
			if string(result) != string(tt.expected) {
				t.Errorf("Splice(%q, %d, %d, %q) = %q; want %q", tt.b, tt.start, tt.end, tt.replacement, result, tt.expected)
			}
		})
	}
}

func TestTakeIndent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "No indent", input: "hello", expected: ""},
		{name: "Space indent", input: "  hello", expected: "  "},
		{name: "Tab indent", input: "\t\thello", expected: "\t\t"},
		{name: "Mixed indent", input: " \t hello", expected: " \t "},
		{name: "Only indent", input: "    ", expected: "    "},
		{name: "Empty string", input: "", expected: ""},
		{name: "Newline in indent stops at newline", input: "  \nhello", expected: "  "},
		{name: "Non-whitespace immediately", input: "abc", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TakeIndent(tt.input)
			if result != tt.expected {
				t.Errorf("TakeIndent(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSHA1Hex_StableAndDistinct(t *testing.T) {
	a := SHA1Hex([]byte("hello"))
	b := SHA1Hex([]byte("hello"))
	c := SHA1Hex([]byte("world"))
	if a != b {
		t.Fatalf("expected stable hash, got %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("expected distinct hashes for distinct input")
	}
	if len(a) != 40 {
		t.Fatalf("expected 40 hex chars, got %d", len(a))
	}
}

func TestEscapeRegexLiteral(t *testing.T) {
	if got := EscapeRegexLiteral("a.b*c"); got != `a\.b\*c` {
		t.Fatalf("unexpected escape: %q", got)
	}
}
