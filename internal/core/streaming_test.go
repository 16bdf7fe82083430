package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestSanitizeReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "valid multibyte kept",
			input:    []byte("café,Zürich"),
			expected: "café,Zürich",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'a', 0xFF, 'b'},
			expected: "a�b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(SanitizeReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeReader_SplitMultibyte(t *testing.T) {
	// One byte per Read splits every multi-byte rune across calls.
	r := SanitizeReader(iotest.OneByteReader(strings.NewReader("München,Kraków")))

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if string(got) != "München,Kraków" {
		t.Errorf("got %q", got)
	}
}

func TestLimitedReader(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		r := NewLimitedReader(strings.NewReader("0123456789"), 10)
		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll error: %v", err)
		}
		if len(got) != 10 || r.BytesRead != 10 {
			t.Errorf("read %d bytes (counted %d), want 10", len(got), r.BytesRead)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		r := NewLimitedReader(strings.NewReader("0123456789"), 5)
		_, err := io.ReadAll(r)
		if !errors.Is(err, ErrFeedTooLarge) {
			t.Errorf("error = %v, want ErrFeedTooLarge", err)
		}
	})

	t.Run("no limit", func(t *testing.T) {
		r := NewLimitedReader(strings.NewReader(strings.Repeat("x", 4096)), 0)
		got, err := io.ReadAll(r)
		if err != nil || len(got) != 4096 {
			t.Errorf("ReadAll = %d bytes, %v", len(got), err)
		}
	})
}
