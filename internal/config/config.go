package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Meta         Meta         `mapstructure:",squash"`
	Google       Google       `mapstructure:",squash"`
	ProviderSync ProviderSync `mapstructure:",squash"`
	Retention    Retention    `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Meta struct {
	BaseURL   string `mapstructure:"meta_base_url"`
	Version   string `mapstructure:"meta_version"`
	AppID     string `mapstructure:"meta_app_id"`
	AppSecret string `mapstructure:"meta_app_secret"`
}

type Google struct {
	BaseURL         string `mapstructure:"google_ads_base_url"`
	Version         string `mapstructure:"google_ads_version"`
	TokenURL        string `mapstructure:"google_oauth_token_url"`
	DeveloperToken  string `mapstructure:"google_ads_developer_token"`
	ClientID        string `mapstructure:"google_oauth_client_id"`
	ClientSecret    string `mapstructure:"google_oauth_client_secret"`
	LoginCustomerID string `mapstructure:"google_ads_login_customer_id"`
}

// ProviderSync parametriza o agendador e o orquestrador de sincronização.
type ProviderSync struct {
	CronSchedule             string `mapstructure:"provider_sync_cron"`
	MinIntervalMinutes       int    `mapstructure:"provider_sync_min_interval_minutes"`
	MaxConcurrentConnections int    `mapstructure:"provider_sync_max_concurrent_connections"`
	IncrementalLookbackDays  int    `mapstructure:"provider_sync_incremental_lookback_days"`
	FullLookbackDays         int    `mapstructure:"provider_sync_full_lookback_days"`
	Enabled                  bool   `mapstructure:"provider_sync_enabled"`
}

// Retention parametriza a limpeza dos históricos de mudanças e execuções.
type Retention struct {
	CronSchedule      string `mapstructure:"retention_cron"`
	ChangeHistoryDays int    `mapstructure:"retention_change_history_days"`
	SyncHistoryDays   int    `mapstructure:"retention_sync_history_days"`
	Enabled           bool   `mapstructure:"retention_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/adsync")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_VERSION", "v17")
	viper.SetDefault("GOOGLE_OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "your_developer_token")
	viper.SetDefault("GOOGLE_OAUTH_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_OAUTH_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")

	// Defaults do agendador de sincronização
	viper.SetDefault("PROVIDER_SYNC_CRON", "*/10 * * * *")          // Verifica conexões elegíveis a cada 10 minutos
	viper.SetDefault("PROVIDER_SYNC_MIN_INTERVAL_MINUTES", 50)      // Intervalo mínimo entre syncs de uma conexão
	viper.SetDefault("PROVIDER_SYNC_MAX_CONCURRENT_CONNECTIONS", 5) // Conexões sincronizadas em paralelo
	viper.SetDefault("PROVIDER_SYNC_INCREMENTAL_LOOKBACK_DAYS", 2)  // Janela de insights do sync incremental
	viper.SetDefault("PROVIDER_SYNC_FULL_LOOKBACK_DAYS", 30)        // Janela de insights do sync completo
	viper.SetDefault("PROVIDER_SYNC_ENABLED", false)

	// Defaults da retenção de históricos
	viper.SetDefault("RETENTION_CRON", "0 2 * * *") // Todos os dias às 2h da manhã
	viper.SetDefault("RETENTION_CHANGE_HISTORY_DAYS", 180)
	viper.SetDefault("RETENTION_SYNC_HISTORY_DAYS", 90)
	viper.SetDefault("RETENTION_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
