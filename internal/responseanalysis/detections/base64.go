package detections

import (
	"context"
	"encoding/base64"
	"log/slog"
	"regexp"
	"strings"
)

// MinBase64Length is the shortest run of Base64 alphabet characters that is
// considered a candidate.
const MinBase64Length = 30

// base64Regexp matches runs of characters from either the standard or the
// URL-safe Base64 alphabet, with optional padding. Anything else, including
// the backslash of an escape sequence, ends a run.
var base64Regexp = regexp.MustCompile(`[a-zA-Z0-9+/\-_]{30,}={0,2}`)

var urlSafeReplacer = strings.NewReplacer("-", "+", "_", "/")

// Base64Candidate is a substring of a response that decodes as Base64.
type Base64Candidate struct {
	// Original is the text exactly as it appeared in the response.
	Original string

	// Normalized is Original converted to the standard Base64 alphabet.
	Normalized string

	// Decoded is the result of decoding Normalized.
	Decoded []byte
}

// DecodeBase64 converts s to the standard Base64 alphabet and decodes it.
// Text that is neither padded nor a multiple of 4 characters long is decoded
// without padding.
func DecodeBase64(s string) (normalized string, decoded []byte, err error) {
	normalized = urlSafeReplacer.Replace(s)
	enc := base64.StdEncoding
	if !strings.HasSuffix(normalized, "=") && len(normalized)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	decoded, err = enc.DecodeString(normalized)
	if err != nil {
		return "", nil, err
	}
	return normalized, decoded, nil
}

/*
FindBase64Candidates returns every substring of the given texts that looks like
Base64 encoded data and successfully decodes, in the order they appear. Texts
are searched in order, so callers pass the response header before the body.

A substring looks like Base64 data if it is at least MinBase64Length characters
from the standard or URL-safe Base64 alphabets, optionally followed by up to two
'=' padding characters. Substrings that fail to decode are dropped.

The texts themselves are never modified.
*/
func FindBase64Candidates(ctx context.Context, texts ...string) []Base64Candidate {
	var candidates []Base64Candidate
	for _, text := range texts {
		for _, match := range base64Regexp.FindAllString(text, -1) {
			normalized, decoded, err := DecodeBase64(match)
			if err != nil {
				slog.DebugContext(ctx, "discarding candidate that is not valid Base64", "candidate", match, "error", err)
				continue
			}
			candidates = append(candidates, Base64Candidate{
				Original:   match,
				Normalized: normalized,
				Decoded:    decoded,
			})
		}
	}
	return candidates
}
