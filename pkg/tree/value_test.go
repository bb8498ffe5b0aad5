package tree

import "testing"

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer", Int(12345), "12345"},
		{"integral float", Number(10.0), "10"},
		{"fractional float", Number(0.25), "0.25"},
		{"text", TextValue("UK"), "UK"},
		{"range", Span(0, 10), "(0, 10)"},
		{"open range", SpanBounds(nil, f64(23)), "(*, 23)"},
		{"list", ListValue(TextValue("UK"), TextValue("DE")), "(UK, DE)"},
		{"absent", Absent(), "absent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueContains(t *testing.T) {
	tests := []struct {
		name  string
		test  Value
		input Value
		want  bool
	}{
		{"range includes lower bound", Span(0, 10), Number(0), true},
		{"range excludes upper bound", Span(0, 10), Number(10), false},
		{"range interior", Span(0, 10), Number(5), true},
		{"open lower bound", SpanBounds(nil, f64(23)), Number(-100), true},
		{"open upper bound", SpanBounds(f64(18), nil), Number(99), true},
		{"range rejects text", Span(0, 10), TextValue("UK"), false},
		{"list membership", ListValue(TextValue("UK"), TextValue("DE")), TextValue("DE"), true},
		{"list miss", ListValue(TextValue("UK"), TextValue("DE")), TextValue("US"), false},
		{"scalar equality", Int(12345), Number(12345), true},
		{"scalar mismatch", Int(12345), Int(67890), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.test.Contains(tt.input); got != tt.want {
				t.Errorf("Contains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueCloneIsIndependent(t *testing.T) {
	orig := Span(0, 10)
	clone := orig.Clone()
	*clone.Lo = 99

	if *orig.Lo != 0 {
		t.Fatalf("mutating a clone changed the original lower bound: %v", *orig.Lo)
	}
}

func TestStateOrderAndDelete(t *testing.T) {
	s := NewState()
	s.Set("segment", Int(12345))
	s.Set("segment.age", Span(0, 10))
	s.Set("geo", TextValue("UK"))
	s.Set("segment", Int(67890)) // overwrite keeps position

	got := s.Features()
	want := []string{"segment", "segment.age", "geo"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Features() = %v, want %v", got, want)
		}
	}

	s.Delete("segment.age")
	if _, ok := s.Get("segment.age"); ok {
		t.Fatal("Delete left the entry behind")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if v, _ := s.Get("segment"); v.Num != 67890 {
		t.Fatalf("overwrite lost: %v", v)
	}
}

func f64(f float64) *float64 {
	return &f
}
