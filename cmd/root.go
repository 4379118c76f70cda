package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhatt13/referral-outreach-app/internal/ranking"
	"github.com/abhatt13/referral-outreach-app/internal/templates"
)

const (
	app = "referral-outreach"
)

type Config struct {
	Resume    string                   `mapstructure:"resume"`
	Job       JobConfig                `mapstructure:"job"`
	Contacts  string                   `mapstructure:"contacts"`
	Identity  ranking.IdentityDefaults `mapstructure:"identity"`
	Ranking   RankingConfig            `mapstructure:"ranking"`
	Templates templates.Config         `mapstructure:"templates"`
	Exclude   ExcludeConfig            `mapstructure:"exclude"`
	SMTP      SMTPConfig               `mapstructure:"smtp"`
	Database  DatabaseConfig           `mapstructure:"database"`
	Followup  FollowupConfig           `mapstructure:"followup"`
}

type JobConfig struct {
	File    string `mapstructure:"file"`
	Company string `mapstructure:"company"`
	Title   string `mapstructure:"title"`
}

type RankingConfig struct {
	Keywords []string `mapstructure:"keywords"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
	File      string   `mapstructure:"file"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password" json:"-"`
	PasswordFile string `mapstructure:"password-file"`
	TLS          bool   `mapstructure:"tls"`
	From         string `mapstructure:"from"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" json:"-"`
}

type FollowupConfig struct {
	Delay         time.Duration `mapstructure:"delay"`
	CheckInterval time.Duration `mapstructure:"check-interval"`
	Pause         time.Duration `mapstructure:"pause"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "referral-outreach sends personalized referral requests built from your resume and a job posting",
	}
)

// Environment variables read in addition to the config file.
var envBindings = map[string]string{
	"database.dsn":       "OUTREACH_DATABASE_DSN",
	"smtp.host":          "OUTREACH_SMTP_HOST",
	"smtp.user":          "OUTREACH_SMTP_USER",
	"smtp.password-file": "OUTREACH_SMTP_PASSWORD_FILE",
	"smtp.from":          "OUTREACH_SMTP_FROM",
	"identity.name":      "OUTREACH_YOUR_NAME",
	"identity.email":     "OUTREACH_YOUR_EMAIL",
	"identity.linkedin":  "OUTREACH_YOUR_LINKEDIN",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("followup.delay", "24h")
	viper.SetDefault("followup.check-interval", "1h")
	viper.SetDefault("followup.pause", "2s")

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "a config file (default is "+app+".yaml in current directory)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")
	flags.StringP("resume", "r", "", "resume file (.pdf, .txt or .md)")
	flags.String("job-file", "", "file with the pasted job description")
	flags.String("company", "", "company name, overrides the one found in the job description")
	flags.String("title", "", "job title, overrides the one found in the job description")
	flags.StringP("contacts", "c", "", "contacts file (.xlsx or .csv)")

	viper.BindPFlag("debug", flags.Lookup("debug"))
	viper.BindPFlag("json", flags.Lookup("json"))
	viper.BindPFlag("resume", flags.Lookup("resume"))
	viper.BindPFlag("job.file", flags.Lookup("job-file"))
	viper.BindPFlag("job.company", flags.Lookup("company"))
	viper.BindPFlag("job.title", flags.Lookup("title"))
	viper.BindPFlag("contacts", flags.Lookup("contacts"))
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
