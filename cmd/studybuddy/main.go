// Package main provides the CLI entrypoint for studybuddy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/api"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/auth"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/config"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/statsui"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/tui"
)

const (
	defaultServerURL  = "http://localhost:5000"
	defaultCount      = 5
	defaultKind       = "mcq"
	defaultDifficulty = "normal"
)

var (
	serverURL string

	studyCount      int
	studyKind       string
	studyDifficulty string
	studyNotesFile  string

	statsLast int
	statsDays int

	loginEmail string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studybuddy",
		Short:         "TUI study assistant: turn notes into quiz sessions",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runStudyCmd,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "backend server URL")
	rootCmd.Flags().IntVar(&studyCount, "count", defaultCount, "questions per session (1-12)")
	rootCmd.Flags().StringVar(&studyKind, "kind", defaultKind, "question kind: mcq or truefalse")
	rootCmd.Flags().StringVar(&studyDifficulty, "difficulty", defaultDifficulty, "question difficulty: normal or hard")
	rootCmd.Flags().StringVar(&studyNotesFile, "notes-file", "", "preload study notes from a file")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newClientAndGate() (*api.Client, *auth.Gate, error) {
	client, err := api.New(serverURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}
	client.SetLogf(logErrf)
	gate := auth.NewGate(client, config.DefaultIdentityPath())
	return client, gate, nil
}

func runStudyCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Server.URL)
	applyIntConfig(cmd, "count", &studyCount, fileCfg.Study.Count)
	applyStringConfig(cmd, "kind", &studyKind, fileCfg.Study.Kind)
	applyStringConfig(cmd, "difficulty", &studyDifficulty, fileCfg.Study.Difficulty)

	kind, err := parseKind(studyKind)
	if err != nil {
		return err
	}
	difficulty, err := parseDifficulty(studyDifficulty)
	if err != nil {
		return err
	}
	if studyCount < 1 || studyCount > 12 {
		return fmt.Errorf("--count must be between 1 and 12")
	}

	initialNotes := ""
	if studyNotesFile != "" {
		data, err := os.ReadFile(studyNotesFile)
		if err != nil {
			return fmt.Errorf("failed to read notes file: %w", err)
		}
		initialNotes = string(data)
	}

	client, gate, err := newClientAndGate()
	if err != nil {
		return err
	}

	params := tui.Params{
		Count:      studyCount,
		Kind:       kind,
		Difficulty: difficulty,
	}
	program := tea.NewProgram(tui.NewModel(client, gate, params, initialNotes), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the session history and analytics dashboard",
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions (0 = all)")
	cmd.Flags().IntVar(&statsDays, "days", 0, "limit to last N days (0 = all)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Server.URL)
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
	applyIntConfig(cmd, "days", &statsDays, fileCfg.Stats.Days)
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsDays < 0 {
		return fmt.Errorf("--days must be >= 0")
	}

	client, gate, err := newClientAndGate()
	if err != nil {
		return err
	}

	filter := model.Filter{Last: statsLast, Days: statsDays}
	program := tea.NewProgram(statsui.NewModel(client, gate, filter), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the identity",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Server.URL)
	email := strings.TrimSpace(loginEmail)
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	client, gate, err := newClientAndGate()
	if err != nil {
		return err
	}
	user, err := gate.Login(context.Background(), email)
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)

	tier, err := client.TierInfo(context.Background())
	if err != nil {
		// The quota line is informational; sign-in already succeeded.
		logErrf("failed to fetch tier info: %v\n", err)
		return nil
	}
	gate.CompleteTierPoll(gate.BeginTierPoll(), tier, nil)
	if line := gate.TierLine(); line != "" {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the remembered identity",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Server.URL)

	_, gate, err := newClientAndGate()
	if err != nil {
		return err
	}
	if err := gate.Logout(context.Background()); err != nil {
		// The local identity is already gone; the backend session expires on
		// its own.
		logErrf("failed to end server session: %v\n", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func parseKind(s string) (model.QuestionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mcq", "multiple-choice", "multiple_choice":
		return model.KindMultipleChoice, nil
	case "truefalse", "true-false", "true_false", "tf":
		return model.KindTrueFalse, nil
	}
	return "", fmt.Errorf("unknown question kind %q (use mcq or truefalse)", s)
}

func parseDifficulty(s string) (model.Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return model.DifficultyNormal, nil
	case "hard":
		return model.DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (use normal or hard)", s)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# studybuddy configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# url = %q    # Backend server URL

[study]
# count = %d                        # Questions per session (1-12)
# kind = %q                      # Question kind: mcq or truefalse
# difficulty = %q               # Question difficulty: normal or hard

[stats]
# last = 0                         # Limit analytics to last N sessions (0 = all)
# days = 0                         # Limit analytics to last N days (0 = all)
`,
		defaultServerURL,
		defaultCount,
		defaultKind,
		defaultDifficulty,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
