// backend/src/parsers/parser_test.go
package parsers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetParser(t *testing.T) {
	p, err := GetParser("ibkr")
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = GetParser("FLEX")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = GetParser("degiro")
	assert.Error(t, err)
}

func TestParseError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &ParseError{Document: "trades.xml", Err: cause}

	assert.Contains(t, err.Error(), "trades.xml")
	assert.True(t, errors.Is(err, cause))
}
