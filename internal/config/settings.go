package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings is the hot-reloadable storefront tuning, kept out of the
// environment so operators can adjust it without a restart.
type Settings struct {
	PaymentMethod    int    `mapstructure:"paymentMethod"`
	Currency         string `mapstructure:"currency"`
	PollIntervalSec  int    `mapstructure:"pollIntervalSec"`
	PollAttempts     int    `mapstructure:"pollAttempts"`
	PendingOrderTTL  int64  `mapstructure:"pendingOrderTTLSec"`
	OrderDescription string `mapstructure:"orderDescription"`
	JanitorCronSpec  string `mapstructure:"janitorCronSpec"`
}

func DefaultSettings() Settings {
	return Settings{
		PaymentMethod:    2, // SBP
		Currency:         "RUB",
		PollIntervalSec:  4,
		PollAttempts:     45,
		PendingOrderTTL:  3600,
		OrderDescription: "Storefront order",
		JanitorCronSpec:  "@every 5m",
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

func NewSettingsHolder() (*SettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("storefront")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/telestore")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TELESTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("storefront.paymentMethod", defaults.PaymentMethod)
	v.SetDefault("storefront.currency", defaults.Currency)
	v.SetDefault("storefront.pollIntervalSec", defaults.PollIntervalSec)
	v.SetDefault("storefront.pollAttempts", defaults.PollAttempts)
	v.SetDefault("storefront.pendingOrderTTLSec", defaults.PendingOrderTTL)
	v.SetDefault("storefront.orderDescription", defaults.OrderDescription)
	v.SetDefault("storefront.janitorCronSpec", defaults.JanitorCronSpec)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Settings
	if err := v.UnmarshalKey("storefront", &cfg); err != nil {
		return nil, err
	}
	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	holder := &SettingsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("storefront", &updated); err != nil {
			log.Printf("[storefront-config] reload failed: %v", err)
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Printf("[storefront-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[storefront-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func validateSettings(cfg Settings) error {
	if cfg.PollIntervalSec <= 0 {
		return errors.New("storefront.pollIntervalSec must be positive")
	}
	if cfg.PollAttempts <= 0 {
		return errors.New("storefront.pollAttempts must be positive")
	}
	if cfg.PendingOrderTTL <= 0 {
		return errors.New("storefront.pendingOrderTTLSec must be positive")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("storefront.currency cannot be empty")
	}
	return nil
}
