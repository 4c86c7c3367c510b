package language

import "testing"

func TestFromCode(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		wantName string
	}{
		{"en", "en", "English"},
		{"es", "es", "Spanish"},
		{"zh", "zh", "Chinese"},
		{"invalid", "", "None"},
		{"", "", "None"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := FromCode(tt.code)
			if got.Code != tt.wantCode {
				t.Errorf("FromCode(%q).Code = %q, want %q", tt.code, got.Code, tt.wantCode)
			}
			if got.Name != tt.wantName {
				t.Errorf("FromCode(%q).Name = %q, want %q", tt.code, got.Name, tt.wantName)
			}
		})
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"en", true},
		{"vi", true},
		{"invalid", false},
		{"", true}, // none is valid
		{"af", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsValidCode(tt.code); got != tt.want {
				t.Errorf("IsValidCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	list := List()
	if len(list) != 18 {
		t.Errorf("List() returned %d languages, want 18", len(list))
	}

	// List must return a copy
	list[0].Code = "xx"
	if List()[0].Code == "xx" {
		t.Errorf("List() should return a copy")
	}

	if len(Codes()) != len(list) {
		t.Errorf("Codes() and List() disagree")
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"es", "es", true},
		{" FR ", "fr", true},
		{"none", "", true},
		{"off", "", true},
		{"", "", true},
		{"klingon", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseTarget(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseTarget(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBase(t *testing.T) {
	tests := map[string]string{
		"en-US": "en",
		"pt_BR": "pt",
		"de":    "de",
		"":      "",
	}
	for in, want := range tests {
		if got := Base(in); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidTag(t *testing.T) {
	for _, tag := range []string{"en", "en-US", "pt_BR", "yue-HK"} {
		if !ValidTag(tag) {
			t.Errorf("ValidTag(%q) = false", tag)
		}
	}
	for _, tag := range []string{"e1-US", "english", "-"} {
		if ValidTag(tag) {
			t.Errorf("ValidTag(%q) = true", tag)
		}
	}
}

func TestTagLabel(t *testing.T) {
	if got := TagLabel("es"); got != "Spanish (es)" {
		t.Errorf("TagLabel(es) = %q", got)
	}
	if got := TagLabel(""); got != "" {
		t.Errorf("TagLabel(\"\") = %q", got)
	}
	if got := TagLabel("e1"); got != "language 'e1'" {
		t.Errorf("TagLabel(e1) = %q", got)
	}
}
