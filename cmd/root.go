package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-screener"
)

type Config struct {
	ResumesDir         string       `mapstructure:"resumes-dir"`
	JobDescription     string       `mapstructure:"job-description"`
	JobDescriptionFile string       `mapstructure:"job-description-file"`
	Output             string       `mapstructure:"output"`
	AI                 *AIConfig    `mapstructure:"ai"`
	Email              *EmailConfig `mapstructure:"email"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type EmailConfig struct {
	Subject         string `mapstructure:"subject"`
	Body            string `mapstructure:"body"`
	BodyFile        string `mapstructure:"body-file"`
	CredentialsFile string `mapstructure:"credentials-file"`
	TokenFile       string `mapstructure:"token-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener is a simple cli for screening resume PDFs against a job description and emailing candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A local .env may carry the secret file locations.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("email.credentials-file", "GMAIL_CREDENTIALS_FILE"); err != nil {
		log.Fatalf("binding GMAIL_CREDENTIALS_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("email.token-file", "GMAIL_TOKEN_FILE"); err != nil {
		log.Fatalf("binding GMAIL_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is "+app+".yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the run and analyze commands.
	if runCmd.CalledAs() == "" && analyzeCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	viper.SetDefault("output", "results.csv")
	viper.SetDefault("email.subject", "Job Application Update")

	// The run command can't proceed without a config file; analyze can be
	// driven entirely by flags.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if runCmd.CalledAs() != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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
