package near

import (
	"encoding/json"
	"errors"
	"strings"
)

// EventMarker prefixes NEP-297 event log lines emitted by the contract.
const EventMarker = "EVENT_JSON:"

// ErrMalformedEvent means the transaction's receipts carry no parsable
// series event: no marker line, broken JSON, or a payload without a series
// id. It is permanent, unlike ErrTxNotFound.
var ErrMalformedEvent = errors.New("malformed or missing series event")

// SeriesEvent is the contract event slice the bridge consumes. Both
// purchases (nft_buy) and mints (nft_series_mint) carry a series id.
type SeriesEvent struct {
	Event         string
	TokenSeriesID string
}

type eventPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type eventData struct {
	TokenSeriesID string `json:"token_series_id"`
}

// ExtractSeriesEvent scans every receipt log of a transaction for an
// EVENT_JSON line carrying a token series id. Logs are scanned rather than
// indexed by position: receipt ordering varies with the call path, and a
// non-matching transaction must be rejected, not misread.
func ExtractSeriesEvent(status *TxStatus) (*SeriesEvent, error) {
	if status == nil {
		return nil, ErrMalformedEvent
	}

	for _, receipt := range status.ReceiptsOutcome {
		for _, line := range receipt.Outcome.Logs {
			if !strings.HasPrefix(line, EventMarker) {
				continue
			}

			ev, ok := parseEventLine(strings.TrimPrefix(line, EventMarker))
			if ok {
				return ev, nil
			}
		}
	}

	return nil, ErrMalformedEvent
}

func parseEventLine(raw string) (*SeriesEvent, bool) {
	var payload eventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}

	// NEP-297 allows the data field to be a single object or an array.
	var data eventData
	if err := json.Unmarshal(payload.Data, &data); err != nil {
		var many []eventData
		if err := json.Unmarshal(payload.Data, &many); err != nil || len(many) == 0 {
			return nil, false
		}
		data = many[0]
	}

	if data.TokenSeriesID == "" {
		return nil, false
	}

	return &SeriesEvent{
		Event:         payload.Event,
		TokenSeriesID: data.TokenSeriesID,
	}, true
}
