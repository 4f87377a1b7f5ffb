package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"bookit/internal/config"
	"bookit/internal/domains/book/model"
	"bookit/internal/domains/book/session"
	"bookit/internal/infrastructure/notify"
	"bookit/internal/infrastructure/transport"
	"bookit/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// deps lets tests point the CLI at a test server.
type deps struct {
	clientConfig func() config.ClientConfig
}

func defaultDeps() deps {
	return deps{clientConfig: config.LoadClientConfig}
}

// transportConfig resolves the client settings, letting --api-url win over
// BOOKIT_API_URL.
func transportConfig(opts *rootOptions, d deps) transport.Config {
	cc := d.clientConfig()
	if opts.apiURL != "" {
		cc.BaseURL = opts.apiURL
	}
	return transport.Config{
		BaseURL:   cc.BaseURL,
		Timeout:   cc.Timeout,
		RateLimit: cc.RateLimit,
		Burst:     cc.Burst,
	}
}

type rootOptions struct {
	apiURL  string
	verbose bool
	asJSON  bool
}

type bookFlags struct {
	title, author, pubDate, pages string
}

func (f *bookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "book title")
	cmd.Flags().StringVar(&f.author, "author", "", "author name")
	cmd.Flags().StringVar(&f.pubDate, "pub-date", "", "publication date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.pages, "pages", "", "number of pages")
}

// apply copies every flag the user actually set into form.
func (f *bookFlags) apply(cmd *cobra.Command, form *session.Form) {
	for _, fl := range []struct{ name, field, value string }{
		{"title", model.FieldTitle, f.title},
		{"author", model.FieldAuthor, f.author},
		{"pub-date", model.FieldPubDate, f.pubDate},
		{"pages", model.FieldNumPages, f.pages},
	} {
		if cmd.Flags().Changed(fl.name) {
			form.Set(fl.field, fl.value)
		}
	}
}

func newRootCmd(d deps) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "bookctl",
		Short:        "Manage books on a BookIT server",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (default $BOOKIT_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP traffic to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print books as JSON")

	newSession := func(cmd *cobra.Command) (*session.Session, error) {
		log := zerolog.Nop()
		var sink notify.Sink = notify.NewConsoleSink(cmd.ErrOrStderr())
		if opts.verbose {
			logger.InitWithWriter("development", "debug", cmd.ErrOrStderr())
			log = logger.Component("bookctl")
			sink = notify.Multi{sink, notify.NewLogSink(log)}
		}

		client, err := transport.NewClient(transportConfig(opts, d), log)
		if err != nil {
			return nil, err
		}
		return session.New(client, sink, log), nil
	}

	rootCmd.AddCommand(
		newListCmd(opts, newSession),
		newShowCmd(opts, newSession),
		newAddCmd(newSession),
		newUpdateCmd(newSession),
		newDeleteCmd(newSession),
	)
	return rootCmd
}

type sessionFactory func(cmd *cobra.Command) (*session.Session, error)

func newListCmd(opts *rootOptions, newSession sessionFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all books",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printBooks(cmd.OutOrStdout(), s.Store().Books(), opts.asJSON)
		},
	}
}

func newShowCmd(opts *rootOptions, newSession sessionFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			b, err := s.Open(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printBooks(cmd.OutOrStdout(), []model.Book{b}, opts.asJSON)
		},
	}
}

func newAddCmd(newSession sessionFactory) *cobra.Command {
	flags := &bookFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			form := session.NewForm()
			flags.apply(cmd, form)
			res, err := s.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Book.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateCmd(newSession sessionFactory) *cobra.Command {
	flags := &bookFlags{}
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a book; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			current, err := s.Open(cmd.Context(), id)
			if err != nil {
				return err
			}
			form := session.NewFormFrom(current)
			flags.apply(cmd, form)
			_, err = s.Update(cmd.Context(), form)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newDeleteCmd(newSession sessionFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Short:   "Delete a book",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if _, err := s.Open(cmd.Context(), id); err != nil {
				return err
			}
			_, err = s.Delete(cmd.Context())
			return err
		},
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("book id must be a positive integer, got %q", raw)
	}
	return id, nil
}

func printBooks(out io.Writer, books []model.Book, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPUBLISHED\tPAGES")
	for _, b := range books {
		pages := "-"
		if b.NumPages != nil {
			pages = strconv.Itoa(*b.NumPages)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.PubDate, pages)
	}
	return tw.Flush()
}
