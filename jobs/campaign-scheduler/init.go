package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/delivery"
	"github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/scheduler"
	"github.com/soshogle/nexrel-crm-sub019/pkg/db"
	httpclient "github.com/soshogle/nexrel-crm-sub019/pkg/http-client"
	"github.com/soshogle/nexrel-crm-sub019/pkg/utils"
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
	ENV_SMS_GATEWAY_API_KEY        = "SMS_GATEWAY_API_KEY"
	ENV_UNSUBSCRIBE_TOKEN_SIGN_KEY = "UNSUBSCRIBE_TOKEN_SIGN_KEY"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	InstanceIDs []string `json:"instance_ids" yaml:"instance_ids"`

	// DB configs
	DBConfigs struct {
		CampaignDB db.DBConfigYaml `json:"campaign_db" yaml:"campaign_db"`
	} `json:"db_configs" yaml:"db_configs"`

	DeliveryConfigs struct {
		SMTPServerConfigPath string `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`

		SMSGatewayConfig struct {
			URL            string `json:"url" yaml:"url"`
			APIKey         string `json:"api_key" yaml:"api_key"`
			RequestTimeout int    `json:"request_timeout" yaml:"request_timeout"`
		} `json:"sms_gateway_config" yaml:"sms_gateway_config"`
	} `json:"delivery_configs" yaml:"delivery_configs"`

	SchedulerConfigs struct {
		BatchSize         int           `json:"batch_size" yaml:"batch_size"`
		ClaimLockDuration time.Duration `json:"claim_lock_duration" yaml:"claim_lock_duration"`
		MaxSendAttempts   int           `json:"max_send_attempts" yaml:"max_send_attempts"`
		SendTimeout       time.Duration `json:"send_timeout" yaml:"send_timeout"`
		CycleTimeout      time.Duration `json:"cycle_timeout" yaml:"cycle_timeout"`
	} `json:"scheduler_configs" yaml:"scheduler_configs"`

	TrackingConfigs struct {
		BaseURL             string        `json:"base_url" yaml:"base_url"`
		UnsubscribeSecret   string        `json:"unsubscribe_secret" yaml:"unsubscribe_secret"`
		UnsubscribeTokenTTL time.Duration `json:"unsubscribe_token_ttl" yaml:"unsubscribe_token_ttl"`
	} `json:"tracking_configs" yaml:"tracking_configs"`
}

var conf config

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

	if apiKey := os.Getenv(ENV_SMS_GATEWAY_API_KEY); apiKey != "" {
		conf.DeliveryConfigs.SMSGatewayConfig.APIKey = apiKey
	}

	if signKey := os.Getenv(ENV_UNSUBSCRIBE_TOKEN_SIGN_KEY); signKey != "" {
		conf.TrackingConfigs.UnsubscribeSecret = signKey
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
