package main

import (
	"encoding/json"
	"fmt"
	"os"

	"foodgame/internal/client"
	"foodgame/internal/engine"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	rounds    int
	mistake   bool
	jsonOut   bool
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// playCmd drives a running server through a few rounds and prints each outcome
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play rounds against a running game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		c := client.New(serverURL)

		if _, err := c.Health(ctx); err != nil {
			return fmt.Errorf("server at %s is not available: %w", c.BaseURL, err)
		}

		gameID, err := c.StartGame(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, titleStyle.Render("game "+gameID))

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		for i := 0; i < rounds; i++ {
			order, err := c.GenerateOrder(ctx, gameID)
			if err != nil {
				return err
			}

			items := order.Order.ItemsOrdered
			if mistake && len(items) > 0 {
				items = items[1:]
			}

			result, err := c.ServeOrder(ctx, gameID, order.Order.ID, items)
			if err != nil {
				return err
			}
			if jsonOut {
				if err := enc.Encode(result); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintln(out, renderOutcome(order.Customer.Name, result))
		}

		state, err := c.State(ctx, gameID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "final score %d, money %.2f, reputation %.2f\n",
			state.Score, state.Money, state.Reputation)
		return nil
	},
}

func renderOutcome(customer string, result *engine.ServeResult) string {
	if result.Success {
		return successStyle.Render("SERVED") + fmt.Sprintf(" %s: %s (+%.2f)",
			customer, result.Reward.Message, result.Reward.Money)
	}
	return errorStyle.Render("FAILED") + fmt.Sprintf(" %s: %s (satisfaction %.0f%%)",
		customer, result.Consequence.Description, result.CustomerSatisfaction)
}

func init() {
	playCmd.Flags().StringVar(&serverURL, "server", os.Getenv("FOODGAME_API_URL"), "Game server base URL")
	playCmd.Flags().IntVar(&rounds, "rounds", 3, "Number of orders to play")
	playCmd.Flags().BoolVar(&mistake, "mistake", false, "Leave out the first ordered item on every serve")
	playCmd.Flags().BoolVar(&jsonOut, "json", false, "Print each serve outcome as JSON")
}
