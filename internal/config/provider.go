package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// ProviderConfig is the file-backed part of the YooKassa configuration.
// The trusted network list rarely changes and is published by the provider,
// so it ships as a config file default rather than a required env var.
// See https://yookassa.ru/docs/support/technical-faq/notifications
type ProviderConfig struct {
	TrustedNetworks []string `mapstructure:"trustedNetworks"`
}

func defaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		TrustedNetworks: []string{
			"185.71.76.0/27",
			"185.71.77.0/27",
			"77.75.153.0/25",
			"77.75.156.11/32",
			"77.75.156.35/32",
			"77.75.154.128/25",
			"2a02:5180::/32",
		},
	}
}

func loadProviderFile() ProviderConfig {
	v := viper.New()

	v.SetConfigName("yookassa")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/bat3d")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BAT3D")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := defaultProviderConfig()
	v.SetDefault("yookassa.trustedNetworks", defaults.TrustedNetworks)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("[provider-config] read failed, using defaults: %v", err)
			return defaults
		}
	}

	var cfg ProviderConfig
	if err := v.UnmarshalKey("yookassa", &cfg); err != nil {
		log.Printf("[provider-config] unmarshal failed, using defaults: %v", err)
		return defaults
	}
	if len(cfg.TrustedNetworks) == 0 {
		cfg.TrustedNetworks = defaults.TrustedNetworks
	}
	return cfg
}
