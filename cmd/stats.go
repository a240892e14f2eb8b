package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/medquiz/medquiz/internal/questions"
	"github.com/medquiz/medquiz/internal/stats"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#14B8A6"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the statistics dashboard for the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		entry, err := a.requireUser()
		if err != nil {
			return err
		}

		var names questions.NameResolver
		var provider questions.Provider
		if a.catalog != nil {
			names = a.catalog
		}
		if a.provider != nil {
			provider = a.provider
		}
		engine := stats.New(a.progress, names, provider)

		d, err := engine.Dashboard(entry.ID)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Statistics — " + entry.Username))

		o := d.Overview
		fmt.Println(sectionStyle.Render("\nOverview"))
		fmt.Printf("  %d questions answered, %d correct / %d incorrect (%d%% accuracy)\n",
			o.TotalQuestions, o.TotalCorrect, o.TotalIncorrect, o.Accuracy)
		fmt.Printf("  %d sessions, %d minutes studied\n", o.TotalSessions, o.TotalTimeMinutes)
		fmt.Printf("  streak: %d days (longest %d)\n", o.CurrentStreak, o.LongestStreak)

		fmt.Println(sectionStyle.Render("\nLast 7 days"))
		for _, day := range d.RecentPerformance.Daily {
			bar := strings.Repeat("█", day.Sessions)
			fmt.Printf("  %s  %-10s %s\n", day.Date, bar,
				dimStyle.Render(fmt.Sprintf("%d✓ %d✗", day.Correct, day.Incorrect)))
		}
		fmt.Printf("  average score: %d%%\n", d.RecentPerformance.AverageScore)

		if len(d.ModuleBreakdown) > 0 {
			fmt.Println(sectionStyle.Render("\nModules"))
			for _, m := range d.ModuleBreakdown {
				fmt.Printf("  %-30s %3d sessions  best %3d%%  avg %3d%%\n",
					m.ModuleName, m.Sessions, m.BestScore, m.AverageScore)
			}
		}

		t := d.TimeAnalysis
		fmt.Println(sectionStyle.Render("\nTime"))
		fmt.Printf("  avg session %s, fastest %s, longest %s, %s/question\n",
			formatDuration(t.AverageSessionTime), formatDuration(t.FastestSession),
			formatDuration(t.LongestSession), formatDuration(t.AverageTimePerQuestion))

		if len(d.ProblemQuestions) > 0 {
			fmt.Println(sectionStyle.Render("\nProblem questions"))
			for _, p := range d.ProblemQuestions {
				fmt.Printf("  %s #%d — %d%% error rate (%d/%d wrong)\n",
					p.ModuleName, p.QuestionIndex+1, p.ErrorRate, p.Incorrect, p.Seen)
			}
		}

		if len(d.Achievements) > 0 {
			fmt.Println(sectionStyle.Render("\nAchievements"))
			for _, ach := range d.Achievements {
				fmt.Printf("  %s %-18s %s\n", ach.Icon, ach.Name, dimStyle.Render(ach.Description))
			}
		}

		evolution, err := engine.EvolutionSeries(entry.ID, 30)
		if err != nil {
			return err
		}
		if len(evolution) > 0 {
			fmt.Println(sectionStyle.Render("\nScore evolution (30 days)"))
			for _, p := range evolution {
				fmt.Printf("  %s  %3d%% over %d session(s)\n", p.Date, p.AverageScore, p.Sessions)
			}
		}

		if provider != nil {
			byType, err := engine.PerformanceByType(entry.ID)
			if err != nil {
				return err
			}
			if byType.Content.Total+byType.Reasoning.Total > 0 {
				fmt.Println(sectionStyle.Render("\nBy question type"))
				fmt.Printf("  content:   %d attempts, %d%% accuracy\n",
					byType.Content.Total, byType.Content.Accuracy)
				fmt.Printf("  reasoning: %d attempts, %d%% accuracy\n",
					byType.Reasoning.Total, byType.Reasoning.Accuracy)
			}
		}

		summary, err := a.progress.Summary(entry.ID)
		if err != nil {
			return err
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf(
			"\n%d sessions all time, average score %d%%, %d in the last week",
			summary.TotalSessions, summary.AverageScore, summary.RecentSessions)))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent quiz sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		entry, err := a.requireUser()
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		sessions, err := a.progress.SessionHistory(entry.ID, limit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions yet")
			return nil
		}

		for _, s := range sessions {
			name := s.ModuleID
			if a.catalog != nil {
				name = a.catalog.ResolveModuleName(s.ModuleID)
			}
			fmt.Printf("%s  %-30s %-6s score %3d%% (%d/%d) in %s\n",
				s.CompletedAt.Format("2006-01-02 15:04"), name, s.Mode,
				s.Score, s.CorrectCount, s.TotalQuestions, formatDuration(s.TimeSpent))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Number of sessions to show")
}
