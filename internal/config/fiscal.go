package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FiscalConfig captures operational fiscal policy that operators may tune at
// runtime without restarting the service.
type FiscalConfig struct {
	// CloseLockTTL bounds how long a fiscal day close may hold the
	// per-device lock before it is considered abandoned.
	CloseLockTTL time.Duration `mapstructure:"closeLockTTL"`

	// CloseTimeout bounds the end-to-end close operation.
	CloseTimeout time.Duration `mapstructure:"closeTimeout"`

	// DefaultMoneyType is assigned to receipt counters when a receipt
	// carries no payments.
	DefaultMoneyType string `mapstructure:"defaultMoneyType"`

	// SubscriptionSweepInterval is how often expired subscriptions are
	// reaped.
	SubscriptionSweepInterval time.Duration `mapstructure:"subscriptionSweepInterval"`
}

func DefaultFiscalConfig() FiscalConfig {
	return FiscalConfig{
		CloseLockTTL:              30 * time.Second,
		CloseTimeout:              20 * time.Second,
		DefaultMoneyType:          "Cash",
		SubscriptionSweepInterval: time.Hour,
	}
}

type FiscalConfigHolder struct {
	current atomic.Value // holds FiscalConfig
}

func NewFiscalConfigHolder() (*FiscalConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("fiscal")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fiscalway/config") // Volume-mounted config
	v.AddConfigPath("/etc/fiscalway")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("FISCALWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultFiscalConfig()
		v.SetDefault("fiscal.closeLockTTL", defaults.CloseLockTTL)
		v.SetDefault("fiscal.closeTimeout", defaults.CloseTimeout)
		v.SetDefault("fiscal.defaultMoneyType", defaults.DefaultMoneyType)
		v.SetDefault("fiscal.subscriptionSweepInterval", defaults.SubscriptionSweepInterval)
	}

	var cfg FiscalConfig
	if err := v.UnmarshalKey("fiscal", &cfg); err != nil {
		return nil, err
	}
	if err := validateFiscalConfig(cfg); err != nil {
		return nil, err
	}

	holder := &FiscalConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FiscalConfig
		if err := v.UnmarshalKey("fiscal", &updated); err != nil {
			log.Printf("[fiscal-config] reload failed: %v", err)
			return
		}
		if err := validateFiscalConfig(updated); err != nil {
			log.Printf("[fiscal-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[fiscal-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticFiscalConfigHolder wraps a fixed config, bypassing the file
// watcher. Used by tests and tools.
func NewStaticFiscalConfigHolder(cfg FiscalConfig) *FiscalConfigHolder {
	holder := &FiscalConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *FiscalConfigHolder) Get() FiscalConfig {
	return h.current.Load().(FiscalConfig)
}

func validateFiscalConfig(cfg FiscalConfig) error {
	if cfg.CloseLockTTL <= 0 {
		return errors.New("fiscal.closeLockTTL must be positive")
	}
	if cfg.CloseTimeout <= 0 {
		return errors.New("fiscal.closeTimeout must be positive")
	}
	if strings.TrimSpace(cfg.DefaultMoneyType) == "" {
		return errors.New("fiscal.defaultMoneyType cannot be empty")
	}
	if cfg.SubscriptionSweepInterval <= 0 {
		return errors.New("fiscal.subscriptionSweepInterval must be positive")
	}
	return nil
}
