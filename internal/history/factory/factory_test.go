package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSNs(t *testing.T) {
	for _, dsn := range []string{"sqlite://:memory:", ":memory:"} {
		sink, err := NewSinkFromDSN(dsn)
		require.NoError(t, err, "dsn %q", dsn)
		assert.NoError(t, sink.Close())
	}
}

func TestEmptyDSN(t *testing.T) {
	_, err := NewSinkFromDSN("")
	assert.Error(t, err)
	_, err = NewSinkFromDSN("   ")
	assert.Error(t, err)
}

func TestUnsupportedScheme(t *testing.T) {
	_, err := NewSinkFromDSN("clickhouse://localhost:9000/panel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DSN")
}
