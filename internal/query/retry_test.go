package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRetry(t *testing.T) {
	tests := []struct {
		in      string
		want    RetryPolicy
		wantErr bool
	}{
		{in: "true", want: RetryForever()},
		{in: " TRUE ", want: RetryForever()},
		{in: "false", want: NoRetry()},
		{in: "0", want: NoRetry()},
		{in: "5", want: Retry(5)},
		{in: "-1", wantErr: true},
		{in: "often", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRetry(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRetry)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRetryPolicy_Allows(t *testing.T) {
	p := Retry(2)
	require.True(t, p.Allows(0))
	require.True(t, p.Allows(1))
	require.False(t, p.Allows(2))

	require.False(t, NoRetry().Allows(0))
	require.True(t, RetryForever().Allows(1_000_000))
	require.Equal(t, Retry(0), Retry(-4))
}

func TestRetryPolicy_DelayIsLinear(t *testing.T) {
	p := Retry(3)
	require.Equal(t, 100*time.Millisecond, p.Delay(100*time.Millisecond, 1))
	require.Equal(t, 300*time.Millisecond, p.Delay(100*time.Millisecond, 3))
}
