package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		planType   string
		wantErr    bool
		wantMonths int
	}{
		{name: "one month plan", planType: "1_month", wantMonths: 1},
		{name: "three month plan", planType: "3_month", wantMonths: 3},
		{name: "six month plan", planType: "6_month", wantMonths: 6},
		{name: "unknown plan", planType: "12_month", wantErr: true},
		{name: "empty plan", planType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Get(tt.planType)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown subscription plan")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.planType, p.Type)
			assert.Equal(t, tt.wantMonths, p.DurationMonths)
			assert.Greater(t, p.Price, int64(0))
		})
	}
}

func TestList_Order(t *testing.T) {
	got := List()
	require.Len(t, got, 3)
	assert.Equal(t, "1_month", got[0].Type)
	assert.Equal(t, "3_month", got[1].Type)
	assert.Equal(t, "6_month", got[2].Type)
}

func TestExtend_FixedThirtyDayMonths(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := Get("1_month")
	require.NoError(t, err)
	assert.Equal(t, base.Add(30*24*time.Hour), p.Extend(base))

	p, err = Get("3_month")
	require.NoError(t, err)
	assert.Equal(t, base.Add(90*24*time.Hour), p.Extend(base))
}
