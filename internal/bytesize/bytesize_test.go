package bytesize

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"1024", 1024, false},
		{"1Ki", KiB, false},
		{"100Mi", 100 * MiB, false},
		{"100MiB", 100 * MiB, false},
		{"1Gi", GiB, false},
		{"100MB", 100 * MB, false},
		{"1.5Ki", 1536, false},
		{"  64Ki  ", 64 * KiB, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10Xi", 0, true},
		{"-5", 0, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	if err := b.UnmarshalText([]byte("100Mi")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if b != 100*MiB {
		t.Errorf("got %d, want %d", b, 100*MiB)
	}

	if err := b.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		size ByteSize
		want string
	}{
		{512, "512B"},
		{KiB, "1.00KiB"},
		{100 * MiB, "100.00MiB"},
		{2 * GiB, "2.00GiB"},
	}
	for _, tt := range tests {
		if got := tt.size.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", uint64(tt.size), got, tt.want)
		}
	}
}
