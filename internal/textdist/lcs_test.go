package textdist

import "testing"

func TestLCSLength(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"both empty", "", "", 0},
		{"first empty", "", "button", 0},
		{"second empty", "button", "", 0},
		{"identical", "login", "login", 5},
		{"classic", "ABCBDAB", "BDCABA", 4},
		{"disjoint", "abc", "xyz", 0},
		{"subsequence", "loginBtn", "loginButton", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LCSLength(tt.a, tt.b); got != tt.want {
				t.Errorf("LCSLength(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLCSLengthSymmetricAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"loginButton", "loginBtn"},
		{"userNameField", "emailField"},
		{"abc", ""},
	}

	for _, p := range pairs {
		l1, l2 := LCSLength(p[0], p[1]), LCSLength(p[1], p[0])
		if l1 != l2 {
			t.Errorf("LCSLength not symmetric for (%q, %q): %d vs %d", p[0], p[1], l1, l2)
		}
		shorter := len(p[0])
		if len(p[1]) < shorter {
			shorter = len(p[1])
		}
		if l1 > shorter {
			t.Errorf("LCSLength(%q, %q) = %d exceeds min length %d", p[0], p[1], l1, shorter)
		}
	}
}

func TestLCSString(t *testing.T) {
	if got := LCSString("loginBtn", "loginButton"); got != "loginBtn" {
		t.Errorf("LCSString = %q, want %q", got, "loginBtn")
	}
	if got := LCSString("", "button"); got != "" {
		t.Errorf("LCSString with empty input = %q, want empty", got)
	}
}

func TestLCSSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "login", "login", 1.0},
		{"one empty", "button", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LCSSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("LCSSimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCharFrequencySimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"anagram", "abc", "cba", 1.0},
		{"disjoint", "abc", "def", 0.0},
		{"one empty", "abc", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CharFrequencySimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("CharFrequencySimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBlendedLCSSimilarity(t *testing.T) {
	if got := BlendedLCSSimilarity("login", "login"); got != 1.0 {
		t.Errorf("BlendedLCSSimilarity of identical strings = %f, want 1.0", got)
	}

	// An anagram scores through the frequency term even though the
	// subsequence term collapses.
	anagram := BlendedLCSSimilarity("abc", "cba")
	disjoint := BlendedLCSSimilarity("abc", "xyz")
	if anagram <= disjoint {
		t.Errorf("anagram (%f) should outscore disjoint (%f)", anagram, disjoint)
	}
}
