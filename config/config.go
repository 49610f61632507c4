package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
		BaseUrl    string `default:"http://localhost:8080" env:"APP_BASE_URL"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"jml-lite" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret string `default:"" env:"JWT_SECRET"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		From       string `default:"" env:"SMTP_FROM"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
	}
	Graph struct {
		BaseUrl      string `default:"https://graph.microsoft.com/v1.0" env:"GRAPH_BASE_URL"`
		AuthorityUrl string `default:"https://login.microsoftonline.com" env:"GRAPH_AUTHORITY_URL"`
		TenantID     string `default:"" env:"GRAPH_TENANT_ID"`
		ClientID     string `default:"" env:"GRAPH_CLIENT_ID"`
		ClientSecret string `default:"" env:"GRAPH_CLIENT_SECRET"`
		SenderUpn    string `default:"" env:"GRAPH_SENDER_UPN"`
		AccessToken  string `default:"" env:"GRAPH_ACCESS_TOKEN"`
	}
	Notifications struct {
		EmailTransport string `default:"graph" env:"NOTIFY_EMAIL_TRANSPORT"`
		EmailEnabled   *bool  `default:"true" env:"NOTIFY_EMAIL_ENABLED"`
		TeamsEnabled   *bool  `default:"true" env:"NOTIFY_TEAMS_ENABLED"`
		InAppEnabled   *bool  `default:"true" env:"NOTIFY_IN_APP_ENABLED"`
	}
	Workflow struct {
		OverdueReminderDays    []int  `default:"[1,3,7]" env:"WORKFLOW_OVERDUE_REMINDER_DAYS"`
		ApprovalDueDays        int    `default:"3" env:"WORKFLOW_APPROVAL_DUE_DAYS"`
		ReminderCron           string `default:"0 8 * * 1-5" env:"WORKFLOW_REMINDER_CRON"`
		ApprovalExpireInterval int    `default:"60" env:"WORKFLOW_APPROVAL_EXPIRE_INTERVAL_MIN"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
