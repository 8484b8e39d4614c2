// scribeflow runs a two-agent crew that researches a topic and writes
// a policy-oriented article to article.md.
//
// Usage:
//
//	scribeflow run                        # prompt for a topic
//	scribeflow run --topic "AI audits"    # non-interactive
//	scribeflow run --config config.yaml   # custom configuration
//	scribeflow version                    # show version info
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scribeflow/scribeflow"
	"github.com/scribeflow/scribeflow/article"
	"github.com/scribeflow/scribeflow/config"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const divider = "=================================================="

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		runCrew(nil)
		return
	}

	switch args[0] {
	case "run":
		runCrew(args[1:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runCrew(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	topic := fs.String("topic", "", "Topic to research (prompts if empty)")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	fmt.Println("Welcome")
	fmt.Println(divider)
	warnAboutMissingKeys(cfg)

	if *topic == "" {
		fmt.Print("Enter a topic to explore: ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		*topic = strings.TrimSpace(line)
		if *topic == "" {
			fmt.Printf("No topic provided. Using default: %s\n", article.DefaultTopic)
		}
	}

	pipeline, err := scribeflow.New(
		scribeflow.WithConfig(cfg),
		scribeflow.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to assemble crew: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTopic: %s\n", article.NormalizeTopic(*topic))
	fmt.Println(divider)
	fmt.Println("\nConfiguring agents based on public service and design experience...")
	fmt.Println("Defining tasks aligned to research and storytelling workflows...")
	fmt.Println("\nLaunching the sequential crew...")

	result, err := pipeline.Run(context.Background(), *topic)
	if err != nil {
		fmt.Println("\nCrew execution did not complete successfully.")
		fmt.Printf("Reason: %v\n", err)
		fmt.Println("Verify API credentials and network access, then re-run the command.")
		os.Exit(1)
	}

	fmt.Println("\nCrew execution completed successfully.")
	fmt.Println(divider)
	fmt.Println("Final Output:")
	fmt.Println()
	fmt.Println(result.FinalOutput)

	if result.ArticleCreated {
		fmt.Printf("\nArticle saved to '%s'.\n", result.ArticlePath)
		fmt.Printf("Article length: %d characters\n", result.ArticleChars)
	} else {
		fmt.Printf("\nThe file '%s' was not created. Confirm that the write_file tool is configured correctly.\n",
			result.ArticlePath)
	}
}

func warnAboutMissingKeys(cfg *config.Config) {
	missing := cfg.MissingKeys()
	if len(missing) > 0 {
		fmt.Println("Warning: the following environment variables are not set:")
		for _, key := range missing {
			fmt.Printf(" - %s\n", key)
		}
		fmt.Println("Set the required keys before running the crew to avoid runtime errors.")
	}
	if !cfg.SearchEnabled() {
		fmt.Println("Note: SERPER_API_KEY is not configured. Web search will be skipped," +
			" but the crew can still operate with available context.")
	}
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func printVersion() {
	fmt.Printf("scribeflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`scribeflow - research and writing crew

Usage:
  scribeflow [run] [flags]   Run the crew (prompts for a topic)
  scribeflow version         Show version information
  scribeflow help            Show this help

Flags for run:
  --config string   Path to YAML config file
  --topic string    Topic to research (skips the interactive prompt)

Environment:
  OPENAI_API_KEY    Required for LLM access
  SERPER_API_KEY    Optional, enables web search for the researcher`)
}
