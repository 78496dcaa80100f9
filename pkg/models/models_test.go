package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
	"total_signals": 42,
	"bot_status": "running",
	"signals": [
		{
			"id": 7,
			"symbol": "XAUUSD",
			"position": "BUY",
			"entry": "3373.33",
			"stop_loss": 3360.5,
			"take_profits": "[\"3380\", 3390.50]",
			"risk_reward": "1:2",
			"source_channel": "gold_vip",
			"timestamp": "2025-08-07 10:11:12",
			"formatted_signal": "XAUUSD BUY 3373.33"
		},
		{
			"id": "abc",
			"symbol": "EURUSD",
			"position": "SELL",
			"entry": 1.0850,
			"stop_loss": "1.0900",
			"take_profits": "",
			"risk_reward": null,
			"source_channel": "fx",
			"timestamp": "2025-08-07 10:00:00",
			"formatted_signal": ""
		}
	]
}`

func TestParseSnapshot(t *testing.T) {
	snapshot, err := ParseSnapshot([]byte(sampleBody))
	require.NoError(t, err)

	assert.Equal(t, 42, snapshot.TotalSignals)
	assert.Equal(t, BotRunning, snapshot.BotStatus)
	require.Len(t, snapshot.Signals, 2)

	first := snapshot.Signals[0]
	assert.Equal(t, SignalID("7"), first.ID)
	assert.Equal(t, PositionBuy, first.Position)
	assert.Equal(t, "3373.33", first.Entry.String())
	assert.Equal(t, "3360.5", first.StopLoss.String())
	assert.Equal(t, "3380, 3390.5", first.TakeProfits.Join(", "))
	assert.True(t, first.RiskReward.Present())

	second := snapshot.Signals[1]
	assert.Equal(t, SignalID("abc"), second.ID)
	assert.Equal(t, "1.085", second.Entry.String())
	assert.Equal(t, "1.0900", second.StopLoss.String())
	assert.Empty(t, second.TakeProfits)
	assert.False(t, second.RiskReward.Present())
}

func TestParseSnapshot_Defaults(t *testing.T) {
	snapshot, err := ParseSnapshot([]byte(`{"signals": null}`))
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalSignals)
	assert.Equal(t, BotStopped, snapshot.BotStatus)
	assert.Empty(t, snapshot.Signals)

	for _, status := range []string{`1`, `true`, `null`, `{"state":"running"}`, `["running"]`} {
		body := `{"total_signals":1,"bot_status":` + status + `,"signals":[]}`
		snapshot, err := ParseSnapshot([]byte(body))
		require.NoError(t, err, status)
		assert.Equal(t, BotStopped, snapshot.BotStatus, status)
		assert.Equal(t, 1, snapshot.TotalSignals, status)
	}
}

func TestParseSnapshot_MalformedTakeProfits(t *testing.T) {
	body := `{"total_signals":1,"signals":[{"id":1,"take_profits":"[1.1, oops"}]}`
	_, err := ParseSnapshot([]byte(body))
	assert.Error(t, err)
}

func TestParseSnapshot_InvalidJSON(t *testing.T) {
	_, err := ParseSnapshot([]byte(`<html>502</html>`))
	assert.Error(t, err)
}

func TestPrice_Present(t *testing.T) {
	tests := []struct {
		name    string
		price   Price
		present bool
	}{
		{"empty", Price{}, false},
		{"empty string", NewPrice(""), false},
		{"string zero", NewPrice("0"), true},
		{"numeric zero", NewNumericPrice(decimal.Zero), false},
		{"numeric", NewNumericPrice(decimal.NewFromFloat(2.5)), true},
		{"ratio", NewPrice("1:3"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.present, tc.price.Present())
		})
	}
}

func TestPrice_NumericNormalisation(t *testing.T) {
	var p Price
	require.NoError(t, p.UnmarshalJSON([]byte("1e3")))
	assert.Equal(t, "1000", p.String())

	require.NoError(t, p.UnmarshalJSON([]byte("2.50")))
	assert.Equal(t, "2.5", p.String())

	assert.Error(t, p.UnmarshalJSON([]byte("{}")))
}

func TestTakeProfits_AcceptsPlainArray(t *testing.T) {
	var tp TakeProfits
	require.NoError(t, tp.UnmarshalJSON([]byte(`["1.1","1.2"]`)))
	assert.Equal(t, "1.1, 1.2", tp.Join(", "))
}

func TestSnapshot_Find(t *testing.T) {
	snapshot, err := ParseSnapshot([]byte(sampleBody))
	require.NoError(t, err)

	signal, ok := snapshot.Find("abc")
	require.True(t, ok)
	assert.Equal(t, "EURUSD", signal.Symbol)

	_, ok = snapshot.Find("missing")
	assert.False(t, ok)
}
