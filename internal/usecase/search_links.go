package usecase

import "strings"

// ingredientSearchURL is the query template for product/brand lookups on INCIDecoder
const ingredientSearchURL = "https://incidecoder.com/search?query="

const upperHex = "0123456789ABCDEF"

// searchURL builds an INCIDecoder search link for a product or brand name
func searchURL(term string) string {
	return ingredientSearchURL + percentEncode(term)
}

// percentEncode escapes every byte outside the RFC 3986 unreserved set, except '/'.
// Spaces become %20 rather than '+'.
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
