package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var v struct {
		Day Date `json:"day"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2024-02-29"}`), &v))
	assert.Equal(t, NewDate(2024, time.February, 29), v.Day)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-02-29"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"day":"29/02/2024"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"day":20240229}`), &v))

	require.NoError(t, json.Unmarshal([]byte(`{"day":null}`), &v))
	assert.True(t, v.Day.IsZero())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-01-31"))
	assert.Equal(t, "2024-01-31", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31 00:00:00+00:00")))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-01", d.String())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, time.March, 3).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", v)
}

func TestDateAddDays(t *testing.T) {
	assert.Equal(t, "2025-01-01", NewDate(2024, time.December, 31).AddDays(1).String())
	assert.Equal(t, "2024-02-29", NewDate(2024, time.March, 1).AddDays(-1).String())
}
