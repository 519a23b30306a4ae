package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/notechat/internal/apiclient"
	"github.com/suPer8Hu/notechat/internal/auth"
	"github.com/suPer8Hu/notechat/internal/config"
)

var (
	userColor  = color.New(color.Bold)
	aiColor    = color.New(color.FgCyan)
	noteColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

func main() {
	cfg := config.Load()

	var baseURL, token string
	client := func() *apiclient.Client { return apiclient.New(baseURL, token) }

	rootCmd := &cobra.Command{
		Use:           "chatctl",
		Short:         "Terminal client for the notechat API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "api", cfg.APIBaseURL, "API base URL (API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", cfg.APIToken, "bearer token (API_TOKEN)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "send <text>",
		Short: "Send one chat message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			userColor.Printf("-> %s\n", text)
			reply, err := client().Send(cmd.Context(), text)
			if err != nil {
				return err
			}
			aiColor.Println(reply)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Print the conversation oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := client().History(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range h.Messages {
				if m.Role == "assistant" {
					aiColor.Println(m.Text)
				} else {
					userColor.Printf("-> %s\n", m.Text)
				}
			}
			if h.LimitReached {
				warnColor.Printf("Conversation limit reached (%d). Start a new chat to continue with fresh context.\n", h.WindowSize)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Delete the whole conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client().NewChat(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d messages\n", n)
			return nil
		},
	})

	notesCmd := &cobra.Command{Use: "notes", Short: "Dashboard notes"}
	notesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client().ListNotes(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range list {
				noteColor.Printf("%s  ", n.CreatedAt.Local().Format(time.DateTime))
				fmt.Println(n.Title)
			}
			return nil
		},
	})
	notesCmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := client().AddNote(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			noteColor.Printf("added note %d\n", n.ID)
			return nil
		},
	})
	rootCmd.AddCommand(notesCmd)

	var sub, email string
	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("--sub is required")
			}
			tok, err := auth.SignJWT(sub, email, cfg.JWTSecret, cfg.JWTAudience, ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&sub, "sub", "", "owner id (token subject)")
	tokenCmd.Flags().StringVar(&email, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
