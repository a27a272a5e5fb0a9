package models

import (
	"strings"
)

const clientKeyPrefix = "ip"

// ClientKey identifies one rate-limited client. The raw identifier comes from
// request headers, so it is escaped before it becomes part of a storage key.
type ClientKey struct {
	identifier string
}

func NewClientKey(identifier string) ClientKey {
	return ClientKey{identifier: sanitizeKeySegment(identifier)}
}

// String returns the formatted key for storage lookup.
func (k ClientKey) String() string {
	return clientKeyPrefix + ":" + k.identifier
}

// sanitizeKeySegment escapes ':' so a header value cannot address a different
// key. '_' is escaped first so the mapping stays injective:
//
//	"a:b"  -> "a_cb"
//	"a_cb" -> "a__cb"
func sanitizeKeySegment(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, ":", "_c")
	return s
}
