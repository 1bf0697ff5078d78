package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCardNumber(t *testing.T) {
	number, err := GenerateCardNumber(14)
	require.NoError(t, err)
	assert.Len(t, number, 14)
	for _, c := range number {
		assert.Contains(t, cardAlphabet, string(c))
	}
}

func TestGenerateCardNumberInvalidLength(t *testing.T) {
	_, err := GenerateCardNumber(4)
	assert.Error(t, err)

	_, err = GenerateCardNumber(64)
	assert.Error(t, err)
}

func TestGenerateCardNumberIsRandom(t *testing.T) {
	first, err := GenerateCardNumber(16)
	require.NoError(t, err)
	second, err := GenerateCardNumber(16)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
