package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		assertion func(t *testing.T, d Device)
	}{
		{
			name:      "empty user agent",
			userAgent: "  ",
			assertion: func(t *testing.T, d Device) {
				assert.Equal(t, "Unknown Device", d.Name)
				assert.False(t, d.Bot)
			},
		},
		{
			name:      "chrome on desktop",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			assertion: func(t *testing.T, d Device) {
				assert.Contains(t, d.Name, "Chrome on ")
				assert.False(t, d.Mobile)
				assert.False(t, d.Bot)
			},
		},
		{
			name:      "safari on iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			assertion: func(t *testing.T, d Device) {
				assert.Contains(t, d.Name, "iPhone")
				assert.True(t, d.Mobile)
			},
		},
		{
			name:      "crawler",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			assertion: func(t *testing.T, d Device) {
				assert.True(t, d.Bot)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDevice(tt.userAgent)
			assert.Equal(t, strings.TrimSpace(d.Name), d.Name)
			tt.assertion(t, d)
		})
	}
}
