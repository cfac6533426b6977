// Package main provides the campuschat CLI entry point.
// Campuschat is a terminal chat assistant for campus life questions, backed by
// a durable per-session message store and a remote or local response generator.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"campuschat/internal/catalog"
	"campuschat/internal/chat"
	"campuschat/internal/config"
	"campuschat/internal/logger"
	"campuschat/internal/render"
	"campuschat/internal/services"
	"campuschat/internal/store"
	"campuschat/pkg/chattypes"
)

var (
	logLevel  string
	logFile   string
	dbPath    string
	generator string
	provider  string
	version   = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "campuschat",
	Short: "Campuschat - campus assistant chat in your terminal",
	Long: `Campuschat answers questions about campus life in an interactive chat session.
Conversations are stored per session, so history survives restarts. Responses
come from a hosted model (Gemini or Claude) or a locally served model.`,
	RunE: runChat,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Campuschat v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the message database [default: campuschat.db]")
	rootCmd.PersistentFlags().StringVar(&generator, "generator", "", "Response generator (remote|local) [default: remote]")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Remote provider (gemini|anthropic) [default: gemini]")

	// Bind flags to viper so they participate in the config precedence chain
	for flag, key := range map[string]string{
		"db":        "db-path",
		"generator": "generator",
		"provider":  "provider",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	opts := chat.Options{HistoryLimit: cfg.HistoryLimit}
	if cfg.Generator == config.GeneratorLocal {
		opts.Local, opts.Remote, err = selectLocalGenerator(ctx, cfg, cat)
	} else {
		opts.Remote, err = services.NewRemoteGenerator(cfg, cat)
	}
	if err != nil {
		return err
	}

	orch, err := chat.New(st, opts)
	if err != nil {
		return err
	}

	ui, err := render.New()
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	logger.Info("Starting campuschat", "version", version, "session", sessionID, "generator", orch.GeneratorName())

	return runLoop(ctx, orch, ui, sessionID)
}

// selectLocalGenerator loads the locally served model, falling back to the
// remote provider when the local endpoint is unusable. Only configuration
// problems trigger the fallback.
func selectLocalGenerator(ctx context.Context, cfg *config.Settings, cat *catalog.Catalog) (chattypes.LocalGenerator, chattypes.RemoteGenerator, error) {
	local := services.NewLocalGenerator(cfg, cat)
	err := local.Load(ctx)
	if err == nil {
		return local, nil, nil
	}

	var confErr *chattypes.ConfigurationError
	if !errors.As(err, &confErr) {
		return nil, nil, err
	}

	logger.Warn("local model unavailable, falling back to remote", "error", err)
	remote, remoteErr := services.NewRemoteGenerator(cfg, cat)
	if remoteErr != nil {
		return nil, nil, fmt.Errorf("local generator failed (%w) and remote fallback unavailable: %w", err, remoteErr)
	}
	return nil, remote, nil
}

func runLoop(ctx context.Context, orch *chat.Orchestrator, ui *render.Renderer, sessionID string) error {
	fmt.Printf("Campuschat v%s (%s)\n", version, orch.GeneratorName())
	fmt.Println("Ask about campus life. Type /exit to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(ui.Prompt("you> "))
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return scanner.Err()
		}

		result, err := orch.OnUserMessage(ctx, sessionID, text)
		if err != nil {
			return err
		}

		if result.Warning != "" {
			fmt.Println(ui.Warning(result.Warning))
			continue
		}

		if last := latestAssistant(result.Messages); last != "" {
			fmt.Println(ui.Assistant(last))
		}
	}

	return scanner.Err()
}

func latestAssistant(msgs []chattypes.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chattypes.RoleAssistant {
			return msgs[i].Content
		}
	}
	return ""
}
