/*
Package hiddenfields extracts the ASP.NET ViewState from the hidden form
fields of an HTML page.

Large ViewState values may be split across several fields, __VIEWSTATE,
__VIEWSTATE1, __VIEWSTATE2 and so on, with the number of fields given in
__VIEWSTATEFIELDCOUNT. Extract puts the parts back together.
*/
package hiddenfields

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ossf/passive-analysis/internal/responseanalysis/detections"
)

const (
	ViewStateField  = "__VIEWSTATE"
	FieldCountField = "__VIEWSTATEFIELDCOUNT"
)

var (
	ErrNoViewState       = errors.New("page has no ViewState field")
	ErrInvalidFieldCount = errors.New("invalid ViewState field count")
	ErrMissingPart       = errors.New("split ViewState part missing")
)

// Version is the ASP.NET version family that produced a ViewState.
type Version int

const (
	VersionUnknown Version = iota
	VersionASPNet1
	VersionASPNet2
)

// String implements the fmt.Stringer interface.
func (v Version) String() string {
	switch v {
	case VersionASPNet1:
		return "ASP.NET 1.x"
	case VersionASPNet2:
		return "ASP.NET 2.0 or later"
	default:
		return "unknown"
	}
}

// IsLatest reports whether v is the current ViewState format.
func (v Version) IsLatest() bool {
	return v == VersionASPNet2
}

func versionOf(value string) Version {
	switch {
	case strings.HasPrefix(value, "/w"):
		return VersionASPNet2
	case strings.HasPrefix(value, "dD"):
		return VersionASPNet1
	default:
		return VersionUnknown
	}
}

// ViewState is the ViewState of a page, reassembled if it was split.
type ViewState struct {
	// Value is the Base64 text of the ViewState.
	Value string

	// Normalized is Value converted to the standard Base64 alphabet, and
	// Decoded is the result of decoding it.
	Normalized string
	Decoded    []byte

	// Split is true when the page declared __VIEWSTATEFIELDCOUNT. Parts is
	// the number of fields the value was assembled from.
	Split bool
	Parts int

	Version Version
}

// Fields returns the value of every input element in the HTML document read
// from r, keyed by the element id, or name if it has no id. Any other element
// with a name starting with "__" is included too.
func Fields(r io.Reader) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	fields := make(map[string]string)
	doc.Find(`input, [name^="__"]`).Each(func(i int, sel *goquery.Selection) {
		key, ok := sel.Attr("id")
		if !ok || key == "" {
			key, ok = sel.Attr("name")
		}
		if !ok || key == "" {
			return
		}
		value, _ := sel.Attr("value")
		fields[key] = strings.TrimSpace(value)
	})
	return fields, nil
}

/*
Extract finds the ViewState in the HTML page body and decodes it.

ErrNoViewState is returned if the page has no __VIEWSTATE field. For split
ViewState, ErrInvalidFieldCount or ErrMissingPart is returned if the parts
cannot be put back together. An error is also returned if the value is not
valid Base64.
*/
func Extract(body string) (*ViewState, error) {
	fields, err := Fields(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	value, ok := fields[ViewStateField]
	if !ok {
		return nil, ErrNoViewState
	}

	vs := &ViewState{Parts: 1}
	if countText, split := fields[FieldCountField]; split {
		count, err := strconv.Atoi(countText)
		if err != nil || count < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFieldCount, countText)
		}
		var sb strings.Builder
		sb.WriteString(value)
		for i := 1; i < count; i++ {
			name := ViewStateField + strconv.Itoa(i)
			part, ok := fields[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
			}
			sb.WriteString(part)
		}
		value = sb.String()
		vs.Split = true
		vs.Parts = count
	}

	vs.Value = value
	if vs.Normalized, vs.Decoded, err = detections.DecodeBase64(value); err != nil {
		return nil, fmt.Errorf("ViewState is not valid Base64: %w", err)
	}
	vs.Version = versionOf(value)
	return vs, nil
}
