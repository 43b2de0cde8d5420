package similarity

import (
	"testing"
	"testing/quick"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "black leather wallet", "black leather wallet", 100},
		{"case and space", "  BLACK Wallet ", "black wallet", 100},
		{"empty a", "", "black wallet", 0},
		{"empty b", "black wallet", "", 0},
		{"only short tokens", "an of to", "an of to", 0},
		{"disjoint", "blue umbrella", "steel bottle", 0},
		// "wallet" exact (1) + contains itself (0.5); max(|A|,|B|) = 4.
		{"one shared token", "wallet", "black leather wallet strap", 38},
		// "wall" is contained in "wallet": half credit only.
		{"partial token", "wall", "wallet", 50},
		// "bag" matches "bag" and "bags": 1 + 0.5 + 0.5 over 2 tokens.
		{"double counting", "bag", "bag bags", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a, tt.b); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestScoreSelfMatch(t *testing.T) {
	f := func(s string) bool {
		if len(tokens(s)) == 0 {
			return Score(s, s) == 0
		}
		return Score(s, s) == 100
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestScoreRange(t *testing.T) {
	f := func(a, b string) bool {
		got := Score(a, b)
		return got >= 0 && got <= 100
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestScoreEmpty(t *testing.T) {
	f := func(s string) bool {
		return Score(s, "") == 0 && Score("", s) == 0
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("The black WALLET, the black strap of it")
	want := []string{"black", "strap", "the", "wallet,"}
	if len(got) != len(want) {
		t.Fatalf("Tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
