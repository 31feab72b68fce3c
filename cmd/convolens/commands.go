package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/convolens/internal/database"
	"github.com/jask/convolens/internal/focusfeed"
	"github.com/jask/convolens/internal/prefs"
	"github.com/jask/convolens/internal/testdata"
	"github.com/jask/convolens/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the two-pane viewer",
	Long: `Open the two-pane viewer.

  convolens view                          # first conversation
  convolens view --conversation <id>      # a specific one
  convolens view --file chat.toml --watch # import a file and follow edits`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		convID, _ := cmd.Flags().GetString("conversation")
		file, _ := cmd.Flags().GetString("file")
		watch, _ := cmd.Flags().GetBool("watch")
		if watch && file == "" {
			return fmt.Errorf("--watch needs --file")
		}

		if file != "" {
			res, err := app.importer().ImportFile(ctx, file)
			if err != nil {
				return err
			}
			if convID == "" {
				convID = res.ConversationID
			}
		} else if convID == "" {
			if err := database.SeedDemo(ctx, app.db); err != nil {
				return fmt.Errorf("seed demo: %w", err)
			}
		}

		store, storeErr := prefs.Default()
		if storeErr == nil && convID == "" {
			if st, err := store.Load(); err == nil {
				convID = st.LastConversation
			} else {
				app.log.Warn("prefs unreadable", "err", err)
			}
		}

		opts := tui.Options{
			Config: app.cfg,
			Services: tui.Services{
				Transcripts: app.transcripts(),
				Importer:    app.importer(),
			},
			Logger:         app.log,
			ConversationID: convID,
		}
		if storeErr == nil {
			opts.OnOpen = func(id string) {
				if err := store.RememberConversation(id); err != nil {
					app.log.Warn("save prefs", "err", err)
				}
			}
		}
		if watch {
			opts.WatchPath = file
		}
		if addr := app.cfg.Feed.Addr; addr != "" {
			feed := focusfeed.New(addr, app.log.With("component", "focusfeed"))
			if err := feed.Start(); err != nil {
				return err
			}
			defer func() { _ = feed.Stop() }()
			opts.Feed = feed
		}
		return tui.Run(ctx, opts)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a transcript file (.toml, .yaml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.importer().ImportFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s: %d messages, %d analyses\n", res.ConversationID, res.Messages, res.Analyses)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the demo conversation, or generated ones with --generate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, _ := cmd.Flags().GetInt("generate")
		if n <= 0 {
			if err := database.SeedDemo(cmd.Context(), app.db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", database.DemoConversationID)
			return nil
		}
		msgs, _ := cmd.Flags().GetInt("messages")
		seed, _ := cmd.Flags().GetUint64("seed")
		res, err := testdata.Generate(cmd.Context(), app.importer(), testdata.Options{
			Conversations: n,
			Messages:      msgs,
			Seed:          seed,
			Unanalyzed:    0.1,
		})
		if err != nil {
			return err
		}
		for _, r := range res {
			fmt.Fprintf(cmd.OutOrStdout(), "generated %s: %d messages\n", r.ConversationID, r.Messages)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		convs, err := app.transcripts().List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tMESSAGES\tCREATED")
		for _, c := range convs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, c.Title, c.MessageCount, c.CreatedAt.In(app.cfg.Location()).Format(app.cfg.UI.DateFormat))
		}
		return tw.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, viewCmd} {
		c.Flags().StringP("conversation", "c", "", "conversation id to open")
		c.Flags().StringP("file", "f", "", "transcript file to import before opening")
		c.Flags().BoolP("watch", "w", false, "re-import --file whenever it changes")
	}
	seedCmd.Flags().Int("generate", 0, "number of synthetic conversations to generate")
	seedCmd.Flags().Int("messages", 40, "messages per generated conversation")
	seedCmd.Flags().Uint64("seed", 1, "random seed for --generate")
	rootCmd.AddCommand(viewCmd, importCmd, seedCmd, listCmd)
}
