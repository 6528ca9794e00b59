package format

import "testing"

func TestEscapeHTML(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"a < b > c":      "a &lt; b &gt; c",
		"black & white":  "black &amp; white",
		"<b>bold</b>":    "&lt;b&gt;bold&lt;/b&gt;",
		"&amp; reescape": "&amp;amp; reescape",
	}
	for in, want := range cases {
		if got := EscapeHTML(in); got != want {
			t.Errorf("EscapeHTML(%q) = %q, want %q", in, got, want)
		}
	}
}
