package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/medquiz/medquiz/internal/auth"
	"github.com/medquiz/medquiz/internal/progress"
	"github.com/medquiz/medquiz/internal/questions"
	"github.com/medquiz/medquiz/internal/quiz"
	"github.com/medquiz/medquiz/internal/state"
	"github.com/medquiz/medquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "medquiz",
	Short: "Multi-user quiz trainer with progress tracking",
	Long:  "Medquiz — terminal quiz trainer that tracks per-question progress, session history, streaks, and achievements per user.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for MEDQUIZ_DB / MEDQUIZ_CONTENT.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MEDQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("content", "", "Path to content directory with catalog.json and question files (overrides MEDQUIZ_CONTENT)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then MEDQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveContentDir returns the question-content directory using the
// --content flag, then MEDQUIZ_CONTENT, then ./content.
func resolveContentDir(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("content"); p != "" {
		return p
	}
	if p := os.Getenv("MEDQUIZ_CONTENT"); p != "" {
		return p
	}
	return "content"
}

// app wires the components together for one command invocation.
type app struct {
	kv       *store.Store
	progress *progress.Store
	state    *state.Container
	auth     *auth.Service
	catalog  *questions.Catalog
	provider *questions.FileProvider
	quiz     *quiz.Coordinator
}

func openApp(cmd *cobra.Command) (*app, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		kv:       kv,
		progress: progress.New(kv),
		state:    state.New(),
	}
	a.auth = auth.New(a.progress, a.state)

	// Content is optional: stats degrade to raw module ids without it.
	contentDir := resolveContentDir(cmd)
	var provider questions.Provider
	catalog, err := questions.LoadCatalog(filepath.Join(contentDir, "catalog.json"))
	if err == nil {
		a.catalog = catalog
		a.provider = questions.NewFileProvider(contentDir, catalog)
		provider = a.provider
	}

	a.quiz = quiz.New(a.state, a.progress, provider)
	return a, nil
}

func (a *app) close() {
	a.kv.Close()
}

// requireUser restores the signed-in user or fails the command.
func (a *app) requireUser() (progress.DirectoryEntry, error) {
	entry, ok, err := a.auth.Restore()
	if err != nil {
		return progress.DirectoryEntry{}, err
	}
	if !ok {
		return progress.DirectoryEntry{}, fmt.Errorf("not signed in; run 'medquiz login' first")
	}
	return entry, nil
}
