package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentsift/resume-screener/internal/analysis"
	"github.com/talentsift/resume-screener/internal/contacts"
	"github.com/talentsift/resume-screener/internal/logger"
	"github.com/talentsift/resume-screener/internal/pdfdoc"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf>",
	Short: "Analyze a single resume PDF against the job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("job-description", "", "the job description text")
	analyzeCmd.Flags().String("job-description-file", "", "a file with the job description")

	viper.BindPFlag("job-description", analyzeCmd.Flags().Lookup("job-description"))
	viper.BindPFlag("job-description-file", analyzeCmd.Flags().Lookup("job-description-file"))
}

func analyze(_ *cobra.Command, path string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jobDescription, err := resolveJobDescription(config)
	if err != nil {
		logger.Fatal(
			"loading the job description",
			zap.Error(err),
			zap.String("hint", "pass --job-description or --job-description-file"),
		)
	}

	analyzer, err := newAnalyzer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the analyzer", zap.Error(err))
	}

	content, err := pdfdoc.Extract(path)
	if err != nil {
		logger.Fatal("extracting the resume", zap.Error(err))
	}

	info := contacts.Extract(content.Text, content.Links)

	result, err := analyzer.Analyze(ctx, content.Text, jobDescription)
	if err != nil {
		var schemaErr *analysis.SchemaError
		if errors.As(err, &schemaErr) {
			logger.Fatal("model response did not fit the output schema",
				zap.String("reason", schemaErr.Reason),
				zap.String("raw", schemaErr.Raw),
			)
		}
		logger.Fatal("analyzing the resume", zap.Error(err))
	}

	verdict := "No"
	if result.IsMatch {
		verdict = "Yes"
	}

	fmt.Printf("Name: %s\n", result.Name)
	fmt.Printf("Email: %s\n", info.Email)
	fmt.Printf("Phone: %s\n", info.Phone)
	fmt.Printf("LinkedIn: %s\n", info.LinkedIn)
	fmt.Printf("Skills: %s\n", strings.Join(result.Skills, ", "))
	fmt.Printf("Is a good match: %s\n", verdict)
}
