package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medquiz/medquiz/internal/state"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <module-id>",
	Short: "Run a quiz session for a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.requireUser(); err != nil {
			return err
		}

		mode := state.ModeQuiz
		if mentor, _ := cmd.Flags().GetBool("mentor"); mentor {
			mode = state.ModeMentor
		}

		in := bufio.NewScanner(cmd.InOrStdin())
		a.quiz.ResumePrompt = func(savedIndex int) bool {
			fmt.Printf("You stopped at question %d. Continue from there? [y/N] ", savedIndex+1)
			if !in.Scan() {
				return false
			}
			answer := strings.ToLower(strings.TrimSpace(in.Text()))
			return answer == "y" || answer == "yes"
		}

		moduleID := args[0]
		if err := a.quiz.Start(moduleID, mode); err != nil {
			return err
		}

		snap := a.state.Current()
		qs := snap.Quiz.Questions
		for i := snap.Quiz.CurrentIndex; i < len(qs); i++ {
			q := qs[i]
			fmt.Printf("\n[%d/%d] %s\n", i+1, len(qs), q.Text)
			for j, opt := range q.Options {
				fmt.Printf("  %d) %s\n", j+1, opt)
			}
			fmt.Print("Answer (number, or q to finish): ")

			if !in.Scan() {
				break
			}
			text := strings.TrimSpace(in.Text())
			if strings.EqualFold(text, "q") {
				break
			}
			choice, err := strconv.Atoi(text)
			if err != nil || choice < 1 || choice > len(q.Options) {
				fmt.Println("Pick one of the listed numbers.")
				i--
				continue
			}

			selected := choice - 1
			correct := selected == q.CorrectOptionIndex
			// Persistence failures don't interrupt the attempt.
			if err := a.quiz.Answer(i, selected, correct); err != nil {
				fmt.Printf("(progress not saved: %v)\n", err)
			}
			_ = a.state.Set(state.PathQuizCurrentIndex, i+1)

			if mode == state.ModeMentor {
				if correct {
					fmt.Println("Correct!")
				} else {
					fmt.Printf("Incorrect — the answer was %d) %s\n",
						q.CorrectOptionIndex+1, q.Options[q.CorrectOptionIndex])
				}
				if q.Explanation != "" {
					fmt.Println(q.Explanation)
				}
			}
		}

		res, err := a.quiz.Finish()
		if err != nil {
			return err
		}
		fmt.Printf("\nDone: %d correct, %d incorrect of %d — score %d%% in %s\n",
			res.CorrectCount, res.IncorrectCount, res.TotalQuestions,
			res.Score, formatDuration(res.TimeSpent))
		return nil
	},
}

func init() {
	quizCmd.Flags().Bool("mentor", false, "Mentor mode: show the answer and explanation after each question")
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
