package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jules-cli/internal/app"
	"jules-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	flagBaseURL string
	flagLang    string
	flagKey     string
)

// setup wires config, keystore and client for every command. The API key is
// resolved flag > environment > keystore.
func setup() (*app.Client, app.Config, error) {
	_ = godotenv.Load()

	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, cfg, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if env := os.Getenv("JULES_BASE_URL"); env != "" && flagBaseURL == "" {
		cfg.BaseURL = env
	}
	if flagLang != "" {
		cfg.Language = flagLang
	}

	key := flagKey
	if key == "" {
		key = os.Getenv("JULES_API_KEY")
	}
	if key == "" {
		if ks, err := app.NewSQLiteKeystore(""); err == nil {
			key, _ = ks.Get(app.KeyAPIKey)
			ks.Close()
		}
	}

	client := app.NewClient(app.Options{
		APIKey:             key,
		BaseURL:            cfg.BaseURL,
		PageSize:           cfg.PageSize,
		ActivitiesPageSize: cfg.ActivitiesPageSize,
		Translator:         app.NewTranslator(app.ParseLanguage(cfg.Language)),
		Logger:             app.NewLogger(app.DefaultLogWriter()),
	})
	return client, cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

// checkErr surfaces the client's swallowed list-fetch failures as a command
// error.
func checkErr(c *app.Client) error {
	if msg := c.Err(); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// mutationErr prefers the client's translated message over the raw error.
func mutationErr(c *app.Client, err error) error {
	if msg := c.Err(); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}

// sessionName accepts either a bare ID or a full "sessions/..." resource name.
func sessionName(arg string) string {
	if strings.HasPrefix(arg, "sessions/") {
		return arg
	}
	return "sessions/" + arg
}

func main() {
	root := &cobra.Command{
		Use:     "jules",
		Short:   "Terminal client for the Jules coding agent",
		Long:    "jules drives Google's Jules coding agent from the terminal.\n\nRun without arguments for the interactive TUI, or use the subcommands for scripting.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := setup()
			if err != nil {
				return err
			}
			m := tui.New(tui.Options{
				Client:          client,
				Translator:      app.NewTranslator(app.ParseLanguage(cfg.Language)),
				PollIntervalSec: cfg.PollIntervalSec,
				ExportDir:       cfg.ExportDir,
			})
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "API base URL override")
	root.PersistentFlags().StringVar(&flagLang, "lang", "", "UI language: en|ja")
	root.PersistentFlags().StringVar(&flagKey, "key", "", "API key override")

	root.AddCommand(
		sessionsCmd(),
		sourcesCmd(),
		activitiesCmd(),
		createCmd(),
		approveCmd(),
		sendCmd(),
		exportCmd(),
		keyCmd(),
		statusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func sessionsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			sessions := client.FetchSessions(ctx, false)
			if err := checkErr(client); err != nil {
				return err
			}
			for all && client.HasMoreSessions() {
				sessions = client.FetchMoreSessions(ctx)
				if err := checkErr(client); err != nil {
					return err
				}
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions.")
				return nil
			}
			for _, s := range sessions {
				line := fmt.Sprintf("%-50s  %-22s  %s", s.Name, s.State, s.Title)
				if pr := s.PullRequestURL(); pr != "" {
					line += "  " + pr
				}
				fmt.Println(line)
			}
			if !all && client.HasMoreSessions() {
				fmt.Println("(more available, use --all)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Follow pagination to the end")
	return cmd
}

func sourcesCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List connected repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			sources := client.FetchSources(ctx, false)
			if err := checkErr(client); err != nil {
				return err
			}
			for all && client.HasMoreSources() {
				sources = client.FetchMoreSources(ctx)
				if err := checkErr(client); err != nil {
					return err
				}
			}

			if len(sources) == 0 {
				fmt.Println("No sources. Install the Jules GitHub App first.")
				return nil
			}
			for _, s := range sources {
				fmt.Printf("%-40s  %s\n", s.Label(), s.Name)
			}
			if !all && client.HasMoreSources() {
				fmt.Println("(more available, use --all)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Follow pagination to the end")
	return cmd
}

func activitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activities <session>",
		Short: "Print a session's timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			name := sessionName(args[0])
			activities := client.FetchActivities(ctx, name, false)
			if err := checkErr(client); err != nil {
				return err
			}
			fmt.Print(app.RenderMarkdown(app.Session{Name: name}, activities))
			return nil
		},
	}
}

func createCmd() *cobra.Command {
	var source, prompt, branch string
	var approvePlan bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("--source and --prompt are required")
			}
			client, _, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			sess := client.CreateSession(ctx, app.CreateSessionOptions{
				Source:              source,
				Prompt:              prompt,
				StartingBranch:      branch,
				RequirePlanApproval: approvePlan,
			})
			if sess == nil {
				return mutationErr(client, fmt.Errorf("create failed"))
			}
			fmt.Printf("Created %s\n", sess.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Source resource name (see 'jules sources')")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Task prompt")
	cmd.Flags().StringVar(&branch, "branch", "", "Starting branch")
	cmd.Flags().BoolVar(&approvePlan, "approve-plan", false, "Require manual plan approval")
	return cmd
}

func approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <session>",
		Short: "Approve the pending plan of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			if err := client.ApprovePlan(ctx, sessionName(args[0])); err != nil {
				return mutationErr(client, err)
			}
			fmt.Println("Plan approved.")
			return nil
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <session> <message...>",
		Short: "Send a message to a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			text := strings.Join(args[1:], " ")
			if err := client.SendMessage(ctx, sessionName(args[0]), text); err != nil {
				return mutationErr(client, err)
			}
			fmt.Println("Message sent.")
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var asJSON bool
	var dir string
	cmd := &cobra.Command{
		Use:   "export <session>",
		Short: "Export a session transcript to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			name := sessionName(args[0])
			activities := client.FetchActivities(ctx, name, false)
			if err := checkErr(client); err != nil {
				return err
			}

			// The list endpoint carries the metadata the header needs; find
			// this session there so the export isn't name-only.
			sess := app.Session{Name: name}
			for _, s := range client.FetchSessions(ctx, true) {
				if s.Name == name {
					sess = s
					break
				}
			}

			if dir == "" {
				dir = cfg.ExportDir
			}
			format := app.ExportMarkdown
			if asJSON {
				format = app.ExportJSON
			}
			path, err := app.SaveExport(dir, sess, activities, format)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Export as JSON instead of Markdown")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default: config export_dir or cwd)")
	return cmd
}

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored API key",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <value>",
			Short: "Store the API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ks, err := app.NewSQLiteKeystore("")
				if err != nil {
					return err
				}
				defer ks.Close()
				if err := ks.Set(app.KeyAPIKey, strings.TrimSpace(args[0])); err != nil {
					return err
				}
				fmt.Println("API key stored.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show whether a key is stored",
			RunE: func(cmd *cobra.Command, args []string) error {
				ks, err := app.NewSQLiteKeystore("")
				if err != nil {
					return err
				}
				defer ks.Close()
				key, err := ks.Get(app.KeyAPIKey)
				if err != nil {
					return err
				}
				if key == "" {
					fmt.Println("No API key stored.")
					return nil
				}
				masked := key
				if len(masked) > 8 {
					masked = masked[:4] + strings.Repeat("*", len(masked)-8) + masked[len(masked)-4:]
				}
				fmt.Printf("API key: %s\n", masked)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete the stored API key",
			RunE: func(cmd *cobra.Command, args []string) error {
				ks, err := app.NewSQLiteKeystore("")
				if err != nil {
					return err
				}
				defer ks.Close()
				if err := ks.Delete(app.KeyAPIKey); err != nil {
					return err
				}
				fmt.Println("API key cleared.")
				return nil
			},
		},
	)
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			fmt.Printf("Base URL:  %s\n", client.BaseURL())
			fmt.Printf("Language:  %s\n", cfg.Language)
			fmt.Printf("Config:    %s\n", app.DefaultConfigPath())
			if client.HasKey() {
				fmt.Println("API key:   configured")
			} else {
				fmt.Println("API key:   missing (set JULES_API_KEY or run 'jules key set')")
			}
			if app.Online(ctx, client.BaseURL()) {
				fmt.Println("Network:   online")
			} else {
				fmt.Println("Network:   offline")
			}
			return nil
		},
	}
}
