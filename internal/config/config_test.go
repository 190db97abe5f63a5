package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 50, cfg.MaxCartLines)
	assert.Equal(t, 30, cfg.MaxTables)
	assert.Equal(t, "tableside:", cfg.StorePrefix)
	assert.Equal(t, cfg.OrderAPIURL, cfg.MenuAPIURL, "menu API falls back to the order API endpoint")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ORDER_API_URL", "http://orders.internal")
	t.Setenv("MAX_TABLES", "10")
	t.Setenv("MAX_CART_LINES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "http://orders.internal", cfg.OrderAPIURL)
	assert.Equal(t, 10, cfg.MaxTables)
	assert.Equal(t, 50, cfg.MaxCartLines, "unparsable values fall back to defaults")
}
