package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentsift/resume-screener/internal/analysis"
	"github.com/talentsift/resume-screener/internal/export"
	"github.com/talentsift/resume-screener/internal/logger"
	"github.com/talentsift/resume-screener/internal/mailer"
	"github.com/talentsift/resume-screener/internal/screening"
	"github.com/talentsift/resume-screener/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptReport      = "Show report"
	PromptAuthorize   = "Authorize email sending"
	PromptSendAll     = "Send email to all candidates"
	PromptSendMatches = "Send email to good matches"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptReport, PromptAuthorize, PromptSendAll, PromptSendMatches, PromptExit},
}

// session carries the state of one interactive run: the batch records and,
// once the authorization flow completes, the granted mail capability.
// Nothing here survives the process.
type session struct {
	config  *Config
	logger  *zap.Logger
	records []screening.Record
	mail    *mailer.Client
	body    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the resume-screener main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("no-interactive", "y", false, "write the results file and exit without the action menu")
	runCmd.Flags().StringP("resumes-dir", "r", "", "directory with resume PDF files")
	runCmd.Flags().StringP("output", "o", "", "output CSV file. Default is results.csv.")

	viper.BindPFlag("resumes-dir", runCmd.Flags().Lookup("resumes-dir"))
	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if strings.TrimSpace(config.ResumesDir) == "" {
		logger.Fatal("resumes directory is required under resumes-dir")
	}

	jobDescription, err := resolveJobDescription(config)
	if err != nil {
		logger.Fatal(
			"loading the job description",
			zap.Error(err),
			zap.String("hint", "set the 'job-description' or 'job-description-file' key in the configuration file"),
		)
	}

	analyzer, err := newAnalyzer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the analyzer", zap.Error(err))
	}

	logger.Info("starting the batch", zap.String("dir", config.ResumesDir))

	runner := screening.NewRunner(nil, analyzer, logger)
	outcomes, err := runner.Run(ctx, config.ResumesDir, jobDescription)
	if err != nil {
		logger.Fatal("running the batch", zap.Error(err))
	}

	records := screening.Records(outcomes)
	logger.Info("batch finished",
		zap.Int("processed", len(outcomes)),
		zap.Int("succeeded", len(records)),
		zap.Int("failed", screening.Failed(outcomes)),
	)

	if len(records) == 0 {
		logger.Info("exiting", zap.String("reason", "no records produced"))
		return
	}

	if err := export.WriteCSV(config.Output, records); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}

	logger.Info("results written",
		zap.String("output", config.Output),
		zap.Int("count", len(records)),
	)

	if cmd.Flag("no-interactive").Value.String() == "true" {
		return
	}

	sess := &session{
		config:  config,
		logger:  logger,
		records: records,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, sess); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, sess *session) error {
	switch action {
	case PromptReport:
		pretty, _ := json.MarshalIndent(sess.records, "", "  ")
		sess.logger.Info(string(pretty), zap.Int("records count", len(sess.records)))
		return nil
	case PromptAuthorize:
		return authorize(ctx, sess)
	case PromptSendAll:
		return sendEmails(ctx, sess, false)
	case PromptSendMatches:
		return sendEmails(ctx, sess, true)
	case PromptExit:
		sess.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// authorize walks the OAuth authorization-code flow and attaches the
// granted mail capability to the session. A cached token is reused.
func authorize(ctx context.Context, sess *session) error {
	if sess.mail != nil {
		sess.logger.Info("application is already authorized to send emails")
		return nil
	}

	if sess.config.Email == nil || strings.TrimSpace(sess.config.Email.CredentialsFile) == "" {
		sess.logger.Warn("skipping authorization",
			zap.String("reason", "email credentials are not configured"),
			zap.String("hint", "set email.credentials-file or GMAIL_CREDENTIALS_FILE"),
		)
		return nil
	}

	credentials, err := secrets.Load(secrets.Source{
		Name: "gmail credentials",
		File: sess.config.Email.CredentialsFile,
	})
	if err != nil {
		return fmt.Errorf("loading gmail credentials: %w", err)
	}

	auth, err := mailer.NewAuthorizer([]byte(credentials), sess.config.Email.TokenFile)
	if err != nil {
		return err
	}

	token, err := auth.CachedToken()
	if err == nil {
		sess.logger.Info("using cached mail token", zap.String("token_file", sess.config.Email.TokenFile))
	} else {
		sess.logger.Info("visit this url to authorize the application", zap.String("url", auth.AuthURL()))

		codePrompt := promptui.Prompt{Label: "Authorization code"}
		code, err := codePrompt.Run()
		if err != nil {
			return err
		}

		token, err = auth.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("completing authorization: %w", err)
		}
	}

	client, err := mailer.NewClient(ctx, auth, token, sess.logger)
	if err != nil {
		return err
	}

	sess.mail = client
	sess.logger.Info("authorization successful")

	return nil
}

func sendEmails(ctx context.Context, sess *session, matchesOnly bool) error {
	if sess.mail == nil {
		sess.logger.Warn("emails not sent",
			zap.Error(mailer.ErrNotAuthorized),
			zap.String("hint", "run the authorize action first"),
		)
		return nil
	}

	body, err := resolveEmailBody(sess)
	if err != nil {
		return err
	}

	summary := sess.mail.SendBatch(ctx, sess.records, matchesOnly, sess.config.Email.Subject, body)

	sess.logger.Info(fmt.Sprintf("emails sent successfully to %d out of %d candidates", summary.Sent, summary.Attempted),
		zap.Bool("matches_only", matchesOnly),
	)

	return nil
}

// resolveEmailBody returns the configured body, or asks for one once and
// keeps it for subsequent send actions.
func resolveEmailBody(sess *session) (string, error) {
	if sess.body != "" {
		return sess.body, nil
	}

	if sess.config.Email != nil {
		body, err := secrets.Load(secrets.Source{
			Name:  "email body",
			Value: sess.config.Email.Body,
			File:  sess.config.Email.BodyFile,
		})
		if err == nil {
			sess.body = body
			return body, nil
		}
	}

	bodyPrompt := promptui.Prompt{Label: "Email body"}
	body, err := bodyPrompt.Run()
	if err != nil {
		return "", err
	}

	sess.body = body
	return body, nil
}

func resolveJobDescription(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	return secrets.Load(secrets.Source{
		Name:  "job description",
		Value: config.JobDescription,
		File:  config.JobDescriptionFile,
	})
}

func newAnalyzer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*analysis.Analyzer, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required under ai.gemini")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := analysis.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	analyzerLogger := logger.WithCommonFields(log, "gemini", generator.Model())

	return analysis.NewAnalyzer(generator, analyzerLogger, cfg.Gemini.MaxLogLength), nil
}
