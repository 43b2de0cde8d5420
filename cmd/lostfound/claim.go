package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spcet/lostfound/internal/claimflow"
	"github.com/spcet/lostfound/internal/client"
	"github.com/spcet/lostfound/internal/model"
)

var claimItemID int64

var claimCmd = &cobra.Command{
	Use:   "claim --item ID",
	Short: "Claim a found item through the verification chat",
	Long: `Log in as a student (or reuse the saved session) and answer the
verification questions for a found item. The answers are submitted as a claim
for admin review.`,
	RunE: runClaim,
}

func init() {
	claimCmd.Flags().Int64Var(&claimItemID, "item", 0, "ID of the found item to claim")
	claimCmd.Flags().String("server", "", "backend URL (default: http://localhost:8080)")
	_ = claimCmd.MarkFlagRequired("item")
	_ = v.BindPFlag("server_url", claimCmd.Flags().Lookup("server"))
}

func runClaim(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := client.LoadSession(cfg.SessionFile)
	if err != nil {
		return err
	}
	session.OnInvalidate(func() {
		fmt.Println("Your session has expired. Please log in again.")
		_ = os.Remove(cfg.SessionFile)
	})

	c := client.New(cfg.ServerURL, session)
	defer c.Close()

	in := bufio.NewScanner(os.Stdin)
	out := cmd.OutOrStdout()

	if err := ensureStudent(ctx, c, in, out); err != nil {
		return err
	}

	item, err := findClaimable(ctx, c, claimItemID)
	if err != nil {
		return err
	}

	questions, err := c.GenerateQuestions(ctx, *item)
	if err != nil {
		fmt.Fprintf(out, "Could not fetch questions (%v); using standard questions.\n", err)
		questions = nil
	}

	poller := &client.UnreadPoller{
		Client:   c,
		Interval: cfg.PollInterval,
		OnCount:  unreadNotifier(out),
	}
	pollCtx, cancelPoll := context.WithCancel(ctx)
	done := poller.Start(pollCtx)
	defer func() {
		cancelPoll()
		<-done
	}()

	flow := claimflow.New(*item, questions, c)
	return chat(ctx, flow, in, out)
}

// ensureStudent reuses a saved student session or prompts for credentials.
func ensureStudent(ctx context.Context, c *client.Client, in *bufio.Scanner, out io.Writer) error {
	if c.Session().Valid() && c.Session().Role() == model.RoleStudent {
		if _, err := c.Me(ctx); err == nil {
			return nil
		}
	}

	roll, err := prompt(in, out, "Roll number: ")
	if err != nil {
		return err
	}
	dob, err := prompt(in, out, "Date of birth (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	student, err := c.StudentLogin(ctx, roll, dob)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := c.Session().Save(cfg.SessionFile); err != nil {
		fmt.Fprintf(out, "Warning: could not save session: %v\n", err)
	}
	fmt.Fprintf(out, "Welcome, %s.\n", student.FullName)
	return nil
}

// findClaimable looks the item up among the public listings.
func findClaimable(ctx context.Context, c *client.Client, id int64) (*model.Item, error) {
	items, err := c.PublicItems(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if !items[i].Claimable() {
			return nil, fmt.Errorf("item %d cannot be claimed", id)
		}
		return &items[i], nil
	}
	return nil, fmt.Errorf("item %d not found", id)
}

func unreadNotifier(out io.Writer) func(int) {
	last := -1
	return func(n int) {
		if n > 0 && n != last {
			fmt.Fprintf(out, "\n[You have %d unread message(s)]\n", n)
		}
		last = n
	}
}

func chat(ctx context.Context, flow *claimflow.Flow, in *bufio.Scanner, out io.Writer) error {
	printReply(out, flow.Start())

	for !flow.State().Terminal() {
		line, err := prompt(in, out, "> ")
		if err != nil {
			return err
		}
		reply, err := flow.Input(ctx, line)
		printReply(out, reply)

		if client.IsStatus(err, http.StatusUnauthorized) {
			return err
		}
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if claim := flow.Claim(); claim != nil {
		fmt.Fprintf(out, "Claim #%d recorded.\n", claim.ID)
	}
	return nil
}

func printReply(out io.Writer, r claimflow.Reply) {
	for _, l := range r.Lines {
		fmt.Fprintln(out, l)
	}
}

func prompt(in *bufio.Scanner, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(in.Text()), nil
}
