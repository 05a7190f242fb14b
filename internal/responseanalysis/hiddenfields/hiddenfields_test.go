package hiddenfields

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const emptyPageViewState = "/wEPDwULLTE2MjA4MzQ4MjZkZA=="

func page(inputs ...string) string {
	return "<html><body><form method=\"post\">" + strings.Join(inputs, "\n") + "</form></body></html>"
}

func hidden(name, value string) string {
	return `<input type="hidden" name="` + name + `" id="` + name + `" value="` + value + `" />`
}

func TestFields(t *testing.T) {
	body := page(
		`<input type="hidden" name="__EVENTTARGET" id="__EVENTTARGET" value="" />`,
		`<input type="text" name="ctl00$user" id="user" value=" bob " />`,
		`<input type="hidden" name="__VIEWSTATE" value="abc" />`,
		`<input type="submit" />`,
		`<span name="__LEGACY" value="old"></span>`,
	)
	got, err := Fields(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	want := map[string]string{
		"__EVENTTARGET": "",
		"user":          "bob",
		"__VIEWSTATE":   "abc",
		"__LEGACY":      "old",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestExtract(t *testing.T) {
	decoded, _ := base64.StdEncoding.DecodeString(emptyPageViewState)
	old := base64.StdEncoding.EncodeToString([]byte("t<1234567890;;>"))

	tests := []struct {
		name string
		body string
		want *ViewState
	}{
		{
			name: "single field",
			body: page(hidden("__VIEWSTATE", emptyPageViewState)),
			want: &ViewState{Value: emptyPageViewState, Normalized: emptyPageViewState, Decoded: decoded, Parts: 1, Version: VersionASPNet2},
		},
		{
			name: "split over three fields",
			body: page(
				hidden("__VIEWSTATEFIELDCOUNT", "3"),
				hidden("__VIEWSTATE", emptyPageViewState[:10]),
				hidden("__VIEWSTATE1", emptyPageViewState[10:20]),
				hidden("__VIEWSTATE2", emptyPageViewState[20:]),
			),
			want: &ViewState{Value: emptyPageViewState, Normalized: emptyPageViewState, Decoded: decoded, Split: true, Parts: 3, Version: VersionASPNet2},
		},
		{
			name: "field count of one",
			body: page(hidden("__VIEWSTATEFIELDCOUNT", "1"), hidden("__VIEWSTATE", emptyPageViewState)),
			want: &ViewState{Value: emptyPageViewState, Normalized: emptyPageViewState, Decoded: decoded, Split: true, Parts: 1, Version: VersionASPNet2},
		},
		{
			name: "asp.net 1.x",
			body: page(hidden("__VIEWSTATE", old)),
			want: &ViewState{Value: old, Normalized: old, Decoded: []byte("t<1234567890;;>"), Parts: 1, Version: VersionASPNet1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.body)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"no viewstate", page(hidden("__EVENTVALIDATION", "abc")), ErrNoViewState},
		{"not html", "plain text response", ErrNoViewState},
		{
			"bad field count",
			page(hidden("__VIEWSTATEFIELDCOUNT", "two"), hidden("__VIEWSTATE", emptyPageViewState)),
			ErrInvalidFieldCount,
		},
		{
			"missing part",
			page(hidden("__VIEWSTATEFIELDCOUNT", "2"), hidden("__VIEWSTATE", emptyPageViewState)),
			ErrMissingPart,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Extract(tt.body); !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Extract(page(hidden("__VIEWSTATE", "!!!not base64!!!"))); err == nil {
		t.Error("Extract() with invalid Base64 error = nil, want error")
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		value    string
		want     Version
		isLatest bool
	}{
		{"/wEPDw", VersionASPNet2, true},
		{"dDwtMT", VersionASPNet1, false},
		{"AAAA", VersionUnknown, false},
		{"", VersionUnknown, false},
	}
	for _, tt := range tests {
		v := versionOf(tt.value)
		if v != tt.want || v.IsLatest() != tt.isLatest {
			t.Errorf("versionOf(%q) = %v (latest %v), want %v (latest %v)", tt.value, v, v.IsLatest(), tt.want, tt.isLatest)
		}
	}
}
