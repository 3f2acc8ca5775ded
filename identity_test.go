package central

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailLocalPart(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("foo", Email("foo@bar.com").LocalPart())
	assert.Equal("first.last", Email("first.last@example.org").LocalPart())
	assert.Equal("", Email("@nowhere").LocalPart())
	assert.Equal("plain", Email("plain").LocalPart())
}

func TestIdentityAuthenticated(t *testing.T) {
	assert := assert.New(t)

	assert.False(Identity{}.Authenticated())
	assert.False(Identity{Email: "foo@bar.com"}.Authenticated())
	assert.True(Identity{UserId: "u-1"}.Authenticated())
}
