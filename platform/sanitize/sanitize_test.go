package sanitize

import (
	"strings"
	"testing"
)

func TestField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Acme   Corp ", "Acme Corp"},
		{"<b>Head</b> of\n\tSales", "Head of Sales"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;Jane", "alert(1)Jane"},
	}
	for _, tc := range tests {
		if got := Field(tc.in); got != tc.want {
			t.Errorf("Field(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFieldTruncates(t *testing.T) {
	got := Field(strings.Repeat("é", MaxFieldLength+10))
	if n := len([]rune(got)); n != MaxFieldLength {
		t.Fatalf("expected %d runes, got %d", MaxFieldLength, n)
	}
}

func TestFieldPtrBlankIsNil(t *testing.T) {
	blank := "  <br/> "
	if FieldPtr(&blank) != nil {
		t.Fatalf("expected nil for blank input")
	}
	if FieldPtr(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}
