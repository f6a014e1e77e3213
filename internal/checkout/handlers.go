package checkout

import (
	"net/http"
	"strings"

	"github.com/skillspark/hub-api/internal/common"
	"github.com/skillspark/hub-api/internal/config"
)

// PublicConfig is everything the browser needs to start a checkout. It never
// carries the key secret.
type PublicConfig struct {
	KeyID      string `json:"keyId"`
	ScriptURL  string `json:"scriptUrl"`
	BrandName  string `json:"brandName"`
	ThemeColor string `json:"themeColor"`
	Currency   string `json:"currency"`
}

// Handler serves the public checkout configuration.
type Handler struct {
	Gateway         *config.Gateway
	Checkout        config.Checkout
	DefaultCurrency string
}

// Config handles GET /checkout/config.
func (h Handler) Config(w http.ResponseWriter, _ *http.Request) {
	if h.Gateway == nil || strings.TrimSpace(h.Gateway.KeyID) == "" {
		common.JSONError(w, http.StatusServiceUnavailable, "CHECKOUT_UNAVAILABLE", "payment gateway is not configured", nil)
		return
	}
	currency := h.DefaultCurrency
	if currency == "" {
		currency = defaultCurrency
	}
	theme := h.Checkout.ThemeColor
	if theme == "" {
		theme = defaultThemeColor
	}
	common.JSON(w, http.StatusOK, PublicConfig{
		KeyID:      h.Gateway.KeyID,
		ScriptURL:  h.Checkout.ScriptURL,
		BrandName:  h.Checkout.BrandName,
		ThemeColor: theme,
		Currency:   currency,
	})
}
