package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseData(t *testing.T) {
	cases := []struct {
		raw, unique, payload string
	}{
		{"\fbonus|Массаж Лица", "bonus", "Массаж Лица"},
		{"bonus|a|b", "bonus", "a|b"},
		{"\f menu ", "menu", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		u, p := ParseData(tc.raw)
		if u != tc.unique || p != tc.payload {
			t.Errorf("ParseData(%q) = (%q, %q), want (%q, %q)", tc.raw, u, p, tc.unique, tc.payload)
		}
	}
}

func TestParsePrefersResolvedUnique(t *testing.T) {
	key, payload := Parse(&tele.Callback{Unique: "bonus", Data: "Facial"})
	if key != "bonus" || payload != "Facial" {
		t.Fatalf("got (%q, %q)", key, payload)
	}

	key, payload = Parse(&tele.Callback{Data: "\fbonus|Facial"})
	if key != "bonus" || payload != "Facial" {
		t.Fatalf("got (%q, %q)", key, payload)
	}

	if key, payload = Parse(nil); key != "" || payload != "" {
		t.Fatal("nil callback must parse to empty values")
	}
}
