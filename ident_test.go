package main

import "testing"

func TestPgIdent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"name", "name"},
		{"user_id", "user_id"},
		{"tbl2", "tbl2"},
		{"order", `"order"`},
		{"user", `"user"`},
		{"Desc", `"Desc"`},
		{"2nd", `"2nd"`},
		{"with space", `"with space"`},
		{`odd"name`, `"odd""name"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := pgIdent(tt.in); got != tt.want {
			t.Errorf("pgIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuotedColumnList(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"a"}, "a"},
		{[]string{"a", "order", "B"}, `a, "order", "B"`},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := quotedColumnList(tt.in); got != tt.want {
			t.Errorf("quotedColumnList(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
