package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dhamidi/convbrowse"
	"github.com/dhamidi/convbrowse/config"
	"github.com/dhamidi/convbrowse/logging"
)

// Flag values; each overrides its environment variable when set.
var (
	apiURL      string
	userID      string
	dataDir     string
	storeKind   string
	logLevel    string
	pageSize    int
	offlineDemo int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "convbrowse",
		Short: "Browse chat conversation history",
		Long: `convbrowse lists, searches and shows conversations from the chat API.

Without a subcommand it opens the interactive browser when stdout is a
terminal and prints the first page otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd)
			return logging.Setup(config.Env().LogLevel, os.Stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return runBrowse(cmd.Context())
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), false)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", "", "Base URL of the conversation API (CONVBROWSE_API_URL)")
	flags.StringVar(&userID, "user", "", "User whose conversations are listed (CONVBROWSE_USER_ID)")
	flags.StringVar(&dataDir, "data-dir", "", "Directory for the local store and logs (CONVBROWSE_DATA_DIR)")
	flags.StringVar(&storeKind, "store", "", "Local store: sqlite, file or memory (CONVBROWSE_STORE)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (CONVBROWSE_LOG_LEVEL)")
	flags.IntVar(&pageSize, "page-size", 0, "Conversations per request (CONVBROWSE_PAGE_SIZE)")
	flags.IntVar(&offlineDemo, "offline-demo", 0, "Serve N generated conversations in-process instead of calling the API")

	rootCmd.AddCommand(
		browseCmd(),
		listCmd(),
		showCmd(),
		deleteCmd(),
		searchCmd(),
		tagsCmd(),
		cacheCmd(),
		settingsCmd(),
		serveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		die("Error: %v", err)
	}
}

func applyFlags(cmd *cobra.Command) {
	cfg := config.Env()
	f := cmd.Flags()
	if f.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if f.Changed("user") {
		cfg.UserID = userID
	}
	if f.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if f.Changed("store") {
		cfg.Store = storeKind
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("page-size") && pageSize > 0 {
		cfg.PageSize = pageSize
	}
}

// openApp builds the App from the effective configuration.
func openApp() (*convbrowse.App, error) {
	var opts []convbrowse.Option
	if offlineDemo > 0 {
		src, err := convbrowse.DemoSource(offlineDemo, nil)
		if err != nil {
			return nil, err
		}
		opts = append(opts, convbrowse.WithSource(src))
	}
	return convbrowse.Open(config.Env(), opts...)
}
