package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid morning", input: "08:00"},
		{name: "valid midnight", input: "00:00"},
		{name: "valid end of day", input: "23:59"},
		{name: "no leading zero", input: "8:00", wantErr: true},
		{name: "out of range hour", input: "24:00", wantErr: true},
		{name: "out of range minute", input: "10:60", wantErr: true},
		{name: "with seconds", input: "08:00:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, ts.String())
		})
	}
}

func TestNewTimeString(t *testing.T) {
	ts := NewTimeString(time.Date(2025, 9, 1, 8, 5, 30, 0, time.UTC))
	assert.Equal(t, TimeString("08:05"), ts)
}

func TestTimeString_Comparison(t *testing.T) {
	assert.True(t, TimeString("08:00").IsBefore("08:45"))
	assert.False(t, TimeString("08:45").IsBefore("08:45"))
	assert.True(t, TimeString("09:00").IsAfter("08:45"))
	// Лексикографическое сравнение корректно только для канонического формата
	assert.True(t, TimeString("09:59").IsBefore("10:00"))
}

func TestTimeString_Minutes(t *testing.T) {
	m, err := TimeString("08:45").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 525, m)

	_, err = TimeString("8:45").Minutes()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts, err := TimeString("08:00").AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("08:45"), ts)

	ts, err = TimeString("09:15").AddMinutes(-30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("08:45"), ts)

	_, err = TimeString("23:30").AddMinutes(45)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd TimeString
		want                       bool
	}{
		{name: "partial overlap", aStart: "08:00", aEnd: "08:45", bStart: "08:30", bEnd: "09:15", want: true},
		{name: "containment", aStart: "08:00", aEnd: "10:00", bStart: "08:30", bEnd: "09:00", want: true},
		{name: "identical", aStart: "08:00", aEnd: "08:45", bStart: "08:00", bEnd: "08:45", want: true},
		{name: "touching edges", aStart: "08:00", aEnd: "08:45", bStart: "08:45", bEnd: "09:30", want: false},
		{name: "touching edges reversed", aStart: "08:45", aEnd: "09:30", bStart: "08:00", bEnd: "08:45", want: false},
		{name: "disjoint", aStart: "08:00", aEnd: "08:45", bStart: "10:00", bEnd: "10:45", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Пересечение симметрично
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}
