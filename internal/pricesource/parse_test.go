package pricesource

import "testing"

func TestParseLocalizedDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "3.475,89", want: "3475.89"},
		{in: "22.707,00", want: "22707"},
		{in: "1.234.567,5", want: "1234567.5"},
		{in: "5694", want: "5694"},
		{in: " 3.493,36 ", want: "3493.36"},
		{in: "0,5", want: "0.5"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1,2,3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocalizedDecimal(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseLocalizedDecimal(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategoryName(t *testing.T) {
	if name, ok := CategoryName("YENI_CEYREK"); !ok || name != CeyrekYeni {
		t.Errorf("CategoryName(YENI_CEYREK) = %q, %v", name, ok)
	}
	if _, ok := CategoryName("ONS"); ok {
		t.Error("ounce price should not be a tracked category")
	}
	if n := len(CategoryNames()); n != 16 {
		t.Errorf("expected 16 categories, got %d", n)
	}
}
