package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTxnID(t *testing.T) {
	tests := []struct {
		year, month, seq int
		want             string
	}{
		{2025, 1, 1, "2025-01-001"},
		{2025, 12, 99, "2025-12-099"},
		{2024, 6, 123, "2024-06-123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTxnID(tt.year, tt.month, tt.seq))
	}
}

func TestParseTxnID(t *testing.T) {
	year, month, seq, err := ParseTxnID("2025-01-001")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, month)
	assert.Equal(t, 1, seq)
}

func TestParseTxnID_RoundTrip(t *testing.T) {
	txnID := FormatTxnID(2025, 11, 42)
	year, month, seq, err := ParseTxnID(txnID)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 11, month)
	assert.Equal(t, 42, seq)
}

func TestParseTxnID_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"2025",
		"2025-01",
		"abcd-01-001",
		"2025-xx-001",
		"2025-13-001",
		"2025-01-xyz",
	}
	for _, txnID := range invalid {
		_, _, _, err := ParseTxnID(txnID)
		assert.Error(t, err, "ParseTxnID(%q)", txnID)
	}
}
