package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-client/internal/api"
	"github.com/stemsi/exstem-client/internal/attempt"
	"github.com/stemsi/exstem-client/internal/auth"
	"github.com/stemsi/exstem-client/internal/config"
	"github.com/stemsi/exstem-client/internal/history"
	"github.com/stemsi/exstem-client/internal/logger"
	"github.com/stemsi/exstem-client/internal/model"
	"github.com/stemsi/exstem-client/internal/review"
	"github.com/stemsi/exstem-client/internal/submit"
)

func main() {
	testID := flag.String("test", "", "test id to attempt")
	historyN := flag.Int("history", 0, "print the last N recorded attempts and exit")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Attempt History ──────────────────────────────────────────
	var recorder attempt.Recorder
	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Warn().Err(err).Msg("Attempt history unavailable")
	} else {
		defer store.Close()
		recorder = store
	}

	if *historyN > 0 {
		if store == nil {
			log.Fatal().Msg("History requested but store could not be opened")
		}
		printHistory(ctx, store, *historyN)
		return
	}

	if *testID == "" {
		fmt.Fprintln(os.Stderr, "Usage: examcli -test <test_id>")
		os.Exit(2)
	}

	// ─── Inspect Bearer Token ──────────────────────────────────────────
	// The submit payload carries user_id; peek it from the token claims.
	userID := 0
	if claims, err := auth.PeekClaims(cfg.APIToken); err != nil {
		log.Warn().Err(err).Msg("Could not read token claims; submitting without user id")
	} else {
		userID = claims.UserID
		if claims.ExpiresWithin(5 * time.Minute) {
			log.Warn().Msg("Bearer token expires soon; the attempt may outlive it")
		}
	}

	// ─── Wire the Attempt Engine ───────────────────────────────────────
	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, auth.StaticTokenSource(cfg.APIToken), log)

	ctrl := attempt.NewController(attempt.Options{
		Catalog:      client,
		Submitter:    submit.New(client, userID, log),
		Reviewer:     review.New(client, log),
		Recorder:     recorder,
		Logger:       log,
		TickInterval: cfg.TickInterval,
	})

	// ─── Run the Attempt ───────────────────────────────────────────────
	if err := ctrl.Start(ctx, *testID); err != nil {
		log.Fatal().Err(err).Msg("Could not start attempt")
	}

	snap := ctrl.Snapshot()
	fmt.Printf("\n%s — %d questions, %s\n", snap.Title, len(snap.Questions), formatSeconds(snap.TotalSeconds))
	fmt.Println("Commands: a <answer> | f | n | p | g <num> | ls | submit | quit")

	runAttempt(ctx, ctrl)

	if res, ok := ctrl.Result(); ok {
		printResult(res)
		reviewLoop(ctx, ctrl, log)
	}
}

// runAttempt drives the interactive answer loop until the attempt leaves the
// Active phase, whether by manual submit or clock expiry.
func runAttempt(ctx context.Context, ctrl *attempt.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	showQuestion(ctrl)

	for ctrl.Phase() == model.PhaseActive {
		fmt.Printf("[%s] > ", formatSeconds(ctrl.RemainingSeconds()))
		if !scanner.Scan() {
			return
		}
		if ctrl.Phase() != model.PhaseActive {
			fmt.Println("\nTime is up — your attempt was submitted automatically.")
			return
		}

		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "a":
			if err := ctrl.SetAnswer(strings.TrimSpace(arg)); err != nil {
				fmt.Println("Cannot answer:", err)
			}
		case "f":
			if err := ctrl.ToggleFlag(); err != nil {
				fmt.Println("Cannot flag:", err)
			}
		case "n":
			navigateRelative(ctrl, +1)
			showQuestion(ctrl)
		case "p":
			navigateRelative(ctrl, -1)
			showQuestion(ctrl)
		case "g":
			num, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("Usage: g <question number>")
				continue
			}
			if err := ctrl.Navigate(num - 1); err != nil {
				fmt.Println("Cannot navigate:", err)
				continue
			}
			showQuestion(ctrl)
		case "ls":
			answered, total := ctrl.Progress()
			fmt.Printf("Answered %d/%d, %s remaining\n", answered, total, formatSeconds(ctrl.RemainingSeconds()))
		case "submit":
			if _, err := ctrl.Submit(ctx); err != nil {
				fmt.Println("Submit failed:", err)
			}
			return
		case "quit":
			fmt.Println("Leaving without submitting.")
			os.Exit(0)
		case "":
			// ignore
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func navigateRelative(ctrl *attempt.Controller, delta int) {
	_, idx := ctrl.CurrentQuestion()
	if err := ctrl.Navigate(idx + delta); err != nil {
		fmt.Println("Cannot navigate:", err)
	}
}

func showQuestion(ctrl *attempt.Controller) {
	q, idx := ctrl.CurrentQuestion()
	_, total := ctrl.Progress()
	fmt.Printf("\nQ%d/%d: %s\n", idx+1, total, q.Prompt)
	switch q.Kind {
	case model.QuestionKindMultipleChoice:
		for _, ch := range q.Choices {
			fmt.Printf("  [%s] %s\n", ch.ID, ch.Text)
		}
		fmt.Println("Answer with: a <choice id>")
	case model.QuestionKindFillInBlank:
		fmt.Println("Answer with: a <text>")
	default:
		fmt.Println("(This question cannot be answered in this client; skip it.)")
	}
}

func printResult(res model.SubmissionResult) {
	fmt.Println("\n──────── Result ────────")
	if res.Source == model.ResultSourceLocal {
		fmt.Println("Note: the grading service was unreachable. This score was")
		fmt.Println("computed locally and could not verify some answers offline.")
	}
	fmt.Printf("Attempted: %d/%d  Correct: %d  Wrong: %d  Skipped: %d\n",
		res.Attempted, res.TotalQuestions, res.Correct, res.Wrong, res.Skipped)
	fmt.Printf("Score: %.1f%%\n", res.Percentage)
}

// reviewLoop offers the post-submission review with a manual retry when the
// server copy is unavailable.
func reviewLoop(ctx context.Context, ctrl *attempt.Controller, log zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nreview | quit > ")
		if !scanner.Scan() {
			return
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "review":
			records, authoritative, err := ctrl.RequestReview(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Review failed")
				continue
			}
			printReview(records, authoritative)
			if err := ctrl.BackFromReview(); err != nil {
				log.Error().Err(err).Msg("Could not leave review")
			}
			if !authoritative {
				fmt.Println("Type 'review' again to retry the server copy.")
			}
		case "quit":
			return
		}
	}
}

func printReview(records []model.ReviewRecord, authoritative bool) {
	fmt.Println("\n──────── Review ────────")
	if !authoritative {
		fmt.Println("Offline review: could not verify some answers offline.")
	}
	for i, rec := range records {
		verdict := "not gradable offline"
		if rec.Correct != nil {
			if *rec.Correct {
				verdict = "correct"
			} else {
				verdict = fmt.Sprintf("wrong (correct: %s)", rec.CorrectAnswer)
			}
		}
		answer := rec.UserAnswer
		if answer == "" {
			answer = "(blank)"
		}
		fmt.Printf("Q%d %s — %s, %ds\n", i+1, answer, verdict, rec.TimeSpentSec)
	}
}

func printHistory(ctx context.Context, store *history.Store, limit int) {
	records, err := store.ListAttempts(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "History error: %v\n", err)
		os.Exit(1)
	}
	for _, rec := range records {
		fmt.Printf("%s  %-20s  %5.1f%%  %s  %s\n",
			rec.SubmittedAt.Local().Format("2006-01-02 15:04"),
			rec.Title, rec.Percentage, rec.Source, rec.AttemptID)
	}
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
