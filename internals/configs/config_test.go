package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "GATEWAY_CURRENCIES", "REQUEST_TIMEOUT", "MIDTRANS_USE_PROD", "APP_ENV"} {
		t.Setenv(k, "")
	}
	cfg := Load(viper.New())

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, []string{"IDR"}, cfg.GatewayCurrencies)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.MidtransUseProd)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("GATEWAY_CURRENCIES", " idr, usd ,,SGD")
	v.Set("APP_ENV", "Production")
	v.Set("MIDTRANS_SERVER_KEY", "  SB-Mid-server-abc ")

	cfg := Load(v)

	assert.Equal(t, []string{"IDR", "USD", "SGD"}, cfg.GatewayCurrencies)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "SB-Mid-server-abc", cfg.MidtransServerKey)
}
