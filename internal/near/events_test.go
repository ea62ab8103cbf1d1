package near

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusWithLogs(logs ...[]string) *TxStatus {
	status := &TxStatus{}
	for _, l := range logs {
		status.ReceiptsOutcome = append(status.ReceiptsOutcome, ReceiptOutcome{
			Outcome: ExecutionOutcome{Logs: l},
		})
	}
	return status
}

func TestExtractSeriesEvent(t *testing.T) {
	status := statusWithLogs([]string{
		"plain log line",
		`EVENT_JSON:{"standard":"nep171","event":"nft_buy","data":{"token_series_id":"7"}}`,
	})

	ev, err := ExtractSeriesEvent(status)
	require.NoError(t, err)
	assert.Equal(t, "7", ev.TokenSeriesID)
	assert.Equal(t, "nft_buy", ev.Event)
}

func TestExtractSeriesEventWithoutEventName(t *testing.T) {
	status := statusWithLogs([]string{`EVENT_JSON:{"data":{"token_series_id":"7"}}`})

	ev, err := ExtractSeriesEvent(status)
	require.NoError(t, err)
	assert.Equal(t, "7", ev.TokenSeriesID)
}

func TestExtractSeriesEventScansAllReceipts(t *testing.T) {
	status := statusWithLogs(
		[]string{"transfer log"},
		[]string{"another", `EVENT_JSON:{"event":"nft_series_mint","data":{"token_series_id":"42"}}`},
	)

	ev, err := ExtractSeriesEvent(status)
	require.NoError(t, err)
	assert.Equal(t, "42", ev.TokenSeriesID)
}

func TestExtractSeriesEventArrayData(t *testing.T) {
	status := statusWithLogs([]string{
		`EVENT_JSON:{"event":"nft_buy","data":[{"token_series_id":"9"}]}`,
	})

	ev, err := ExtractSeriesEvent(status)
	require.NoError(t, err)
	assert.Equal(t, "9", ev.TokenSeriesID)
}

func TestExtractSeriesEventNoMarker(t *testing.T) {
	status := statusWithLogs([]string{"just a log", "another log"})

	_, err := ExtractSeriesEvent(status)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestExtractSeriesEventMalformed(t *testing.T) {
	tests := []string{
		`EVENT_JSON:{not json`,
		`EVENT_JSON:{"data":{}}`,
		`EVENT_JSON:{"data":[]}`,
	}

	for _, line := range tests {
		_, err := ExtractSeriesEvent(statusWithLogs([]string{line}))
		assert.ErrorIs(t, err, ErrMalformedEvent, "log %q", line)
	}
}

func TestExtractSeriesEventNilStatus(t *testing.T) {
	_, err := ExtractSeriesEvent(nil)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
