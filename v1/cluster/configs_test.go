package cluster

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigFromYAML(t *testing.T) {
	doc := `
max_concurrent_transfers: 2
transfer_timeout: 30m
default_transfer_method: snapshot
`
	cfg := DefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte(doc), cfg))

	assert.Equal(t, 2, cfg.MaxConcurrentTransfers)
	assert.Equal(t, 30*time.Minute, cfg.TransferTimeout)
	assert.Equal(t, TransferMethodSnapshot, cfg.DefaultTransferMethod)
	assert.Equal(t, time.Second, cfg.TransferPollInterval)
}

func TestConfigRejectsUnknownTransferMethod(t *testing.T) {
	cfg := DefaultConfig()
	err := yaml.Unmarshal([]byte("default_transfer_method: rsync\n"), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rsync")
}

func TestParseTransferMethod(t *testing.T) {
	for _, m := range []TransferMethod{TransferMethodStreamRecords, TransferMethodSnapshot, TransferMethodWalDelta} {
		parsed, err := ParseTransferMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	parsed, err := ParseTransferMethod(" WAL_DELTA ")
	require.NoError(t, err)
	assert.Equal(t, TransferMethodWalDelta, parsed)

	_, err = ParseTransferMethod("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTransferMethodJSON(t *testing.T) {
	out, err := json.Marshal(ShardTransferOperation{Method: TransferMethodWalDelta})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"method":"wal_delta"`)

	_, err = json.Marshal(TransferMethod(9))
	assert.Error(t, err)
}
