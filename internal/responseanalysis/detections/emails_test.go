package detections

import (
	"reflect"
	"testing"
)

func TestFindEmailAddresses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"none", "nothing to see", nil},
		{"single", "contact admin@example.com for help", []string{"admin@example.com"}},
		{"mixed case", "Jane.Doe+web@Corp.Example.ORG", []string{"Jane.Doe+web@Corp.Example.ORG"}},
		{"multiple", "a@b.co;c_d@e-f.net", []string{"a@b.co", "c_d@e-f.net"}},
		{"no tld", "user@localhost", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindEmailAddresses(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindEmailAddresses(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
