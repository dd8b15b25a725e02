package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/delivery"
	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/scheduler"
	"github.com/soshogle/nexrel-crm-sub019/pkg/db"
	httpclient "github.com/soshogle/nexrel-crm-sub019/pkg/http-client"
	"github.com/soshogle/nexrel-crm-sub019/pkg/utils"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	campaignDB "github.com/soshogle/nexrel-crm-sub019/pkg/db/campaigns"
	sc "github.com/soshogle/nexrel-crm-sub019/pkg/smtp-client"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_CAMPAIGN_DB_USERNAME       = "CAMPAIGN_DB_USERNAME"
	ENV_CAMPAIGN_DB_PASSWORD       = "CAMPAIGN_DB_PASSWORD"
	ENV_API_KEYS                   = "API_KEYS"
	ENV_SMS_GATEWAY_API_KEY        = "SMS_GATEWAY_API_KEY"
	ENV_UNSUBSCRIBE_TOKEN_SIGN_KEY = "UNSUBSCRIBE_TOKEN_SIGN_KEY"

	ENV_UNSUBSCRIBE_TOKEN_TTL = "UNSUBSCRIBE_TOKEN_TTL"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
	} `json:"gin_config" yaml:"gin_config"`

	ApiKeys     []string `json:"api_keys" yaml:"api_keys"`
	InstanceIDs []string `json:"instance_ids" yaml:"instance_ids"`

	// DB configs
	DBConfigs struct {
		CampaignDB db.DBConfigYaml `json:"campaign_db" yaml:"campaign_db"`
	} `json:"db_configs" yaml:"db_configs"`

	DeliveryConfigs deliveryConfigs `json:"delivery_configs" yaml:"delivery_configs"`

	SchedulerConfigs schedulerConfigs `json:"scheduler_configs" yaml:"scheduler_configs"`

	TrackingConfigs trackingConfigs `json:"tracking_configs" yaml:"tracking_configs"`
}

type deliveryConfigs struct {
	SMTPServerConfigPath string `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`

	SMSGatewayConfig struct {
		URL            string `json:"url" yaml:"url"`
		APIKey         string `json:"api_key" yaml:"api_key"`
		RequestTimeout int    `json:"request_timeout" yaml:"request_timeout"`
	} `json:"sms_gateway_config" yaml:"sms_gateway_config"`
}

type schedulerConfigs struct {
	BatchSize         int           `json:"batch_size" yaml:"batch_size"`
	ClaimLockDuration time.Duration `json:"claim_lock_duration" yaml:"claim_lock_duration"`
	MaxSendAttempts   int           `json:"max_send_attempts" yaml:"max_send_attempts"`
	SendTimeout       time.Duration `json:"send_timeout" yaml:"send_timeout"`
	CycleTimeout      time.Duration `json:"cycle_timeout" yaml:"cycle_timeout"`
}

type trackingConfigs struct {
	BaseURL             string        `json:"base_url" yaml:"base_url"`
	UnsubscribeSecret   string        `json:"unsubscribe_secret" yaml:"unsubscribe_secret"`
	UnsubscribeTokenTTL time.Duration `json:"unsubscribe_token_ttl" yaml:"unsubscribe_token_ttl"`
}

var (
	campaignDBService *campaignDB.CampaignDBService
	schedulerService  *scheduler.Scheduler
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLoggerFromConfig(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	checkRequiredConfigs()

	// init db
	initDBs()

	// init scheduler with delivery adapters
	initScheduler()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_CAMPAIGN_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.CampaignDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_CAMPAIGN_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.CampaignDB.Password = dbPassword
	}

	if apiKeys := os.Getenv(ENV_API_KEYS); apiKeys != "" {
		conf.ApiKeys = strings.Split(apiKeys, ",")
	}

	if apiKey := os.Getenv(ENV_SMS_GATEWAY_API_KEY); apiKey != "" {
		conf.DeliveryConfigs.SMSGatewayConfig.APIKey = apiKey
	}

	if signKey := os.Getenv(ENV_UNSUBSCRIBE_TOKEN_SIGN_KEY); signKey != "" {
		conf.TrackingConfigs.UnsubscribeSecret = signKey
	}

	if ttlVal := os.Getenv(ENV_UNSUBSCRIBE_TOKEN_TTL); ttlVal != "" {
		ttl, err := utils.ParseDurationString(ttlVal)
		if err != nil {
			slog.Error("error during secretsOverride", slog.String("error", err.Error()), ENV_UNSUBSCRIBE_TOKEN_TTL, ttlVal)
			panic(err)
		}
		conf.TrackingConfigs.UnsubscribeTokenTTL = ttl
	}
}

func checkRequiredConfigs() {
	if len(conf.ApiKeys) < 1 {
		slog.Error("No API keys configured")
		panic("no API keys configured")
	}
	if len(conf.InstanceIDs) < 1 {
		slog.Error("No instance IDs configured")
		panic("no instance IDs configured")
	}
	if conf.TrackingConfigs.BaseURL == "" {
		slog.Error("Tracking base URL not set")
		panic("tracking base URL not set")
	}
	if conf.TrackingConfigs.UnsubscribeSecret == "" {
		slog.Error("Unsubscribe token sign key not set - configure UNSUBSCRIBE_TOKEN_SIGN_KEY env variable.")
		panic("unsubscribe token sign key not set")
	}
}

func initDBs() {
	var err error
	campaignDBService, err = campaignDB.NewCampaignDBService(db.DBConfigFromYamlObj(conf.DBConfigs.CampaignDB, conf.InstanceIDs))
	if err != nil {
		slog.Error("Error connecting to Campaign DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initScheduler() {
	adapters := delivery.Adapters{}

	if conf.DeliveryConfigs.SMTPServerConfigPath != "" {
		smtpServers := sc.SmtpServerList{}
		if err := smtpServers.ReadFromFile(conf.DeliveryConfigs.SMTPServerConfigPath); err != nil {
			slog.Error("Error reading SMTP server config", slog.String("error", err.Error()))
			panic(err)
		}
		smtpClients, err := sc.NewSmtpClients(smtpServers)
		if err != nil {
			slog.Error("Error creating SMTP clients", slog.String("error", err.Error()))
			panic(err)
		}
		adapters.Email = delivery.NewEmailAdapter(smtpClients)
	}

	if conf.DeliveryConfigs.SMSGatewayConfig.URL != "" {
		adapters.SMS = delivery.NewSMSAdapter(httpclient.ClientConfig{
			RootURL: conf.DeliveryConfigs.SMSGatewayConfig.URL,
			APIKey:  conf.DeliveryConfigs.SMSGatewayConfig.APIKey,
			Timeout: time.Duration(conf.DeliveryConfigs.SMSGatewayConfig.RequestTimeout) * time.Second,
		})
	}

	schedulerService = scheduler.New(
		campaignDBService,
		campaignDBService,
		campaignDBService,
		campaignDBService,
		adapters,
		scheduler.Config{
			BatchSize:           conf.SchedulerConfigs.BatchSize,
			ClaimLockDuration:   conf.SchedulerConfigs.ClaimLockDuration,
			MaxSendAttempts:     conf.SchedulerConfigs.MaxSendAttempts,
			SendTimeout:         conf.SchedulerConfigs.SendTimeout,
			TrackingBaseURL:     conf.TrackingConfigs.BaseURL,
			UnsubscribeSecret:   conf.TrackingConfigs.UnsubscribeSecret,
			UnsubscribeTokenTTL: conf.TrackingConfigs.UnsubscribeTokenTTL,
		},
	)
}
