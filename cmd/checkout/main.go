// Command checkout runs one purchase against a running API from the terminal.
// The hosted payment dialog is replaced by a prompt, so the payment id and
// signature come from the gateway's test mode.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/skillspark/hub-api/internal/catalog"
	"github.com/skillspark/hub-api/internal/checkout"
	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/obs"
	"github.com/skillspark/hub-api/internal/resilience"
)

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(envOrDefault("OBS_LOG_FORMAT", "console"), envOrDefault("OBS_LOG_LEVEL", "info"))

	courseID := flag.String("course", "", "catalog course id to buy")
	amount := flag.String("amount", "", "amount in major units; defaults to the catalog price")
	currency := flag.String("currency", "", "ISO 4217 currency; the API defaults to "+cfg.Payment.DefaultCurrency)
	apiURL := flag.String("api", envOrDefault("HUB_API_URL", "http://localhost"+cfg.HTTPAddr()), "API base URL")
	email := flag.String("email", "", "payer email for the dialog prefill")
	flag.Parse()

	purchase, err := newPurchase(*courseID, *amount, *currency)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid purchase")
	}
	purchase.Prefill.Email = *email

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initiator := &checkout.Initiator{
		Loader: &checkout.HTTPScriptLoader{
			URL: cfg.Checkout.ScriptURL,
			HTTP: resilience.HTTPClient{
				Client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
				Timeout: cfg.Gateway.Timeout,
			},
		},
		Gateway:    terminalGateway{in: os.Stdin, out: os.Stdout},
		Backend:    checkout.APIClient{BaseURL: *apiURL},
		Navigator:  consoleNavigator{out: os.Stdout},
		Notifier:   logNotifier{logger: logger},
		KeyID:      cfg.Gateway.KeyID,
		BrandName:  cfg.Checkout.BrandName,
		ThemeColor: cfg.Checkout.ThemeColor,
		Logger:     logger,
	}
	outcome, err := initiator.Start(ctx, purchase)
	if err != nil {
		logger.Error().Err(err).Msg("checkout aborted")
		os.Exit(1)
	}
	if !outcome.Success {
		os.Exit(2)
	}
}

// newPurchase builds the purchase from the catalog entry, with amount and
// currency overriding the catalog price when given.
func newPurchase(courseID, amount, currency string) (checkout.Purchase, error) {
	svc, err := catalog.NewService()
	if err != nil {
		return checkout.Purchase{}, err
	}
	course, err := svc.Get(courseID)
	if err != nil {
		return checkout.Purchase{}, err
	}
	p := checkout.Purchase{
		CourseID:    course.ID,
		Description: course.Title,
		Amount:      decimal.New(course.Price, -2),
		Currency:    strings.ToUpper(strings.TrimSpace(currency)),
	}
	if strings.TrimSpace(amount) != "" {
		p.Amount, err = decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return checkout.Purchase{}, err
		}
	}
	return p, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
