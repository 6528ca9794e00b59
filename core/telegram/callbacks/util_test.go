package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		key     string
		payload string
	}{
		{`\fmenu|0:main:0:1:0`, "menu", "0:main:0:1:0"},
		{"menu|2:product:3:1:10", "menu", "2:product:3:1:10"},
		{"delete_42", "delete_42", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if key != tc.key || payload != tc.payload {
			t.Fatalf("parse %q: got (%q, %q), want (%q, %q)",
				tc.data, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	key, payload := ParseCallbackData(nil)
	if key != "" || payload != "" {
		t.Fatalf("nil callback: got (%q, %q), want empty", key, payload)
	}
}
