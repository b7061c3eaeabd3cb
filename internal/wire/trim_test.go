package wire

import "testing"

func TestTrimBatch(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"delimiter and end token", "[INST] question [/INST] hello world</s> extra", "hello world"},
		{"no delimiter", "no delimiter text", "no delimiter text"},
		{"no end token", "[INST] question [/INST] no end token", "no end token"},
		{"end token without delimiter", "plain text</s> trailing", "plain text"},
		{"last delimiter wins", "[/INST] first [/INST] second</s>", "second"},
		{"empty continuation", "[INST] q [/INST]</s>", ""},
	}
	for _, c := range cases {
		if got := TrimBatch(c.in); got != c.want {
			t.Fatalf("%s: TrimBatch(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}
