package csvio_test

import (
	"bytes"
	"testing"

	"github.com/api-sage/client-ledger-processor/src/internal/adapter/csvio"
	"github.com/api-sage/client-ledger-processor/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountWriterWritesHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := csvio.NewAccountWriter(&buf)

	require.NoError(t, w.Write(domain.AccountSummary{
		Client:    1,
		Available: decimal.RequireFromString("1.5"),
		Held:      decimal.Zero,
		Total:     decimal.RequireFromString("1.5"),
	}))
	require.NoError(t, w.Write(domain.AccountSummary{
		Client:    2,
		Available: decimal.RequireFromString("2"),
		Held:      decimal.Zero,
		Total:     decimal.RequireFromString("4"),
		Locked:    true,
	}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "client,available,held,total,locked\n"+
		"1,1.5,0.0,1.5,false\n"+
		"2,2.0,0.0,4.0,true\n", buf.String())
	assert.Equal(t, 2, w.Rows())
}

func TestAccountWriterEmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	w := csvio.NewAccountWriter(&buf)
	require.NoError(t, w.Flush())

	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"7":        "7.0",
		"7.00":     "7.0",
		"1.5":      "1.5",
		"0.123456": "0.1235",
		"-1":       "-1.0",
		"0":        "0.0",
	}
	for in, want := range cases {
		assert.Equal(t, want, csvio.FormatAmount(decimal.RequireFromString(in)), in)
	}
}
