package keys

import (
	"strings"
)

const (
	// PfxHealthCheck is used for prefixing health check redis key
	PfxHealthCheck = "healthcheck"
	// PfxNonce is used for prefixing login nonces
	PfxNonce = "nonce"
	// PfxAuction is used for prefixing cached auctions
	PfxAuction = "auction"
	// PfxEns is used for prefixing resolved ens names
	PfxEns = "ens"

	delimiter = ":"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(delimiter, components...)
}

// GetPrefix returns the first component of a redis key, used as metrics tag
func GetPrefix(key string) string {
	if i := strings.Index(key, delimiter); i >= 0 {
		return key[:i]
	}
	return key
}
