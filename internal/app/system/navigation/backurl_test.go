package navigation_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/applytrack/internal/app/system/navigation"
	"github.com/stretchr/testify/assert"
)

func TestSafeBackURL_Applications(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"list with filter", "/applications/abc?return=%2Fapplications%3Fstatus%3DAccepted", "/applications?status=Accepted"},
		{"paged list", "/applications/abc?return=%2Fapplications%3Fstart%3D25", "/applications?start=25"},
		{"no return", "/applications/abc", "/applications"},
		{"external", "/applications/abc?return=https%3A%2F%2Fevil.example%2F", "/applications"},
		{"protocol relative", "/applications/abc?return=%2F%2Fevil.example", "/applications"},
		{"other section", "/applications/abc?return=%2Fsettings", "/applications"},
		{"lookalike prefix", "/applications/abc?return=%2Fapplicationsx", "/applications"},
		{"action page", "/applications/abc?return=%2Fapplications%2Fnew", "/applications"},
		{"fallback keeps status", "/applications/abc?status=Rejected", "/applications?status=Rejected"},
		{"fallback ignores all", "/applications/abc?status=all", "/applications"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			assert.Equal(t, tt.want, navigation.SafeBackURL(r, navigation.ApplicationsBackURL))
		})
	}
}

func TestSafeBackURL_NoPrefix(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?return=%2Fdashboard", nil)
	got := navigation.SafeBackURL(r, navigation.BackURLOptions{Fallback: "/"})
	assert.Equal(t, "/dashboard", got)
}
