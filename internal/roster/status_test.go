package roster

import (
	"errors"
	"testing"
)

func TestParseStatusToken(t *testing.T) {
	cases := []struct {
		token string
		want  Status
		ok    bool
	}{
		{"play", StatusPlaying, true},
		{"cancel", StatusNotPlaying, true},
		{"maybe", StatusMaybe, true},
		{"", "", false},
		{"Play", "", false},
		{"yes", "", false},
	}
	for _, tc := range cases {
		got, err := ParseStatusToken(tc.token)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseStatusToken(%q): unexpected error %v", tc.token, err)
			}
			if got != tc.want {
				t.Errorf("ParseStatusToken(%q) = %q, want %q", tc.token, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrUnknownStatusToken) {
			t.Errorf("ParseStatusToken(%q): expected ErrUnknownStatusToken, got %v", tc.token, err)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPlaying, StatusNotPlaying, StatusMaybe} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("resting").Valid() {
		t.Error("unknown status should be invalid")
	}
}
