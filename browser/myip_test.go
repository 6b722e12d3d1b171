package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want IPInfo
	}{
		{
			name: "full",
			body: `{"ip":"203.0.113.7","country":"Netherlands","cc":"NL"}`,
			want: IPInfo{IP: "203.0.113.7", Country: "Netherlands", CC: "NL"},
		},
		{
			name: "ip_only",
			body: `{"ip":"203.0.113.7"}`,
			want: IPInfo{IP: "203.0.113.7"},
		},
		{
			name: "padded",
			body: "\n  {\"ip\":\"203.0.113.7\",\"country\":\"Netherlands\",\"cc\":\"NL\"}  \n",
			want: IPInfo{IP: "203.0.113.7", Country: "Netherlands", CC: "NL"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseIPInfo(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseIPInfoErrors(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		"",
		"not json",
		"<html><body>blocked</body></html>",
		`{"country":"Netherlands"}`, // no ip field
	} {
		_, err := parseIPInfo(body)
		require.ErrorIs(t, err, ErrParseIP, "body: %q", body)
	}
}
