package main

import (
	"reflect"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"</s>", []string{"</s>"}},
		{"</s>, END ,", []string{"</s>", "END"}},
		{" , , ", []string{}},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("splitCSV(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
