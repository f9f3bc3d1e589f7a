package utils

import "github.com/geocoder89/bootcamphub/internal/query"

// BuildListCacheKey keys a cached list page by resource and canonical descriptor.
// Equivalent query strings (reordered keys, defaulted page) share a key.
func BuildListCacheKey(resource string, d query.Descriptor) string {
	return ListCachePrefix(resource) + d.Canonical()
}

// ListCachePrefix is shared by every cached page of resource.
func ListCachePrefix(resource string) string {
	return resource + ":list:v1:"
}
