package main

import (
	"reflect"
	"testing"
)

func TestSplitSources(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"medium", []string{"medium"}},
		{" medium , github,,", []string{"medium", "github"}},
	}
	for _, tt := range tests {
		if got := splitSources(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitSources(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
