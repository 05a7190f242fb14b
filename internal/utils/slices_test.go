package utils

import (
	"flag"
	"reflect"
	"strconv"
	"testing"
)

func TestRemoveDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  []string
	}{
		{"nil", nil, nil},
		{"no duplicates", []string{"b", "a"}, []string{"b", "a"}},
		{"keeps first occurrence", []string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveDuplicates(tt.items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RemoveDuplicates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	got := Transform([]int{1, 22, 333}, strconv.Itoa)
	if want := []string{"1", "22", "333"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Transform() = %v, want %v", got, want)
	}
	if got := Transform([]int{}, strconv.Itoa); len(got) != 0 {
		t.Errorf("Transform() of empty slice = %v, want empty", got)
	}
}

func TestCommaSeparatedFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	csf := CommaSeparatedFlags("input", nil, "inputs")
	fs.Var(&csf, csf.Name, csf.Info)

	if got := csf.String(); got != "" {
		t.Errorf("String() before parsing = %q, want empty", got)
	}
	if err := fs.Parse([]string{"-input", "a.http,b.http"}); err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if want := []string{"a.http", "b.http"}; !reflect.DeepEqual(csf.Values, want) {
		t.Errorf("Values = %v, want %v", csf.Values, want)
	}
	if got := csf.String(); got != "a.http,b.http" {
		t.Errorf("String() = %q, want %q", got, "a.http,b.http")
	}
}
