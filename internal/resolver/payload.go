package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// PayloadPath is the path every printed code points at.
const PayloadPath = "/qr"

// ErrNoID is returned when a payload carries no usable id parameter.
var ErrNoID = errors.New("payload has no id parameter")

// BuildPayload returns the URL encoded into a record's QR image,
// e.g. https://shikho.com/qr?id=qrid_1.
func BuildPayload(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + PayloadPath + "?id=" + url.QueryEscape(id)
}

// ParsePayload extracts the record id from a scanned string. Full URLs,
// relative paths and bare query strings are accepted; the first id wins.
func ParsePayload(payload string) (string, error) {
	query := strings.TrimSpace(payload)
	if i := strings.IndexByte(query, '?'); i >= 0 {
		query = query[i+1:]
	}
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}
	for _, part := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key != "id" {
			continue
		}
		id, err := url.QueryUnescape(value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoID, err)
		}
		if id == "" {
			return "", ErrNoID
		}
		return id, nil
	}
	return "", ErrNoID
}
