package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare", raw: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "padded", raw: "  [3]\n", want: "[3]"},
		{name: "json fence", raw: "```json\n[1]\n```", want: "[1]"},
		{name: "upper case tag", raw: "```JSON\n{\"results\":[]}\n```", want: `{"results":[]}`},
		{name: "untagged fence", raw: "```\n[2]\n```", want: "[2]"},
		{name: "single line", raw: "```json [4]```", want: "[4]"},
		{name: "no fence keeps leading letters", raw: "json is not here", want: "json is not here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.raw))
		})
	}
}

func TestDecodeEntries_UpperCaseFence(t *testing.T) {
	entries, err := decodeEntries("```JSON\n[{\"ticker\":\"TSLA\",\"action\":\"Buy\"}]\n```")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TSLA", stringField(entries[0], "ticker"))
}

func TestDecodeEntries_Empty(t *testing.T) {
	_, err := decodeEntries("```json\n```")
	assert.ErrorIs(t, err, errNoEntries)

	_, err = decodeEntries(`{"results":"none"}`)
	assert.ErrorIs(t, err, errNoEntries)
}
