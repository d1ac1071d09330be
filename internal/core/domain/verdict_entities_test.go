package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListingID(t *testing.T) {
	id, err := ParseListingID("12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", id.String())
}

func TestParseListingID_RejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"1234",
		"123456",
		"12a45",
		"12 45",
		" 12345",
		"12345 ",
		"１２３４５", // полноширинные цифры - не ASCII
		"-1234",
	}

	for _, raw := range cases {
		_, err := ParseListingID(raw)
		assert.Error(t, err, "input %q must be rejected", raw)
	}
}
