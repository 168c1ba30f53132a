package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "auction:42", RedisKey(PfxAuction, "42"))
	assert.Equal(t, "nonce:0xabc:1", RedisKey(PfxNonce, "0xabc", "1"))
}

func TestGetPrefix(t *testing.T) {
	assert.Equal(t, PfxAuction, GetPrefix(RedisKey(PfxAuction, "42")))
	assert.Equal(t, "plain", GetPrefix("plain"))
}
