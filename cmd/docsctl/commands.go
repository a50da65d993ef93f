package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Lllllllleong/qualitydocs/internal/models"
	"github.com/Lllllllleong/qualitydocs/internal/services"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	Format string // "json" | "text"
	Actor  string
}

// newService is replaced in tests.
var newService = services.NewDocumentServiceFromEnv

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "docsctl",
		Short:         "Administer controlled documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "docsctl", "name recorded on audit fields")

	cmd.AddCommand(
		newCodeCommand(opts),
		newStatsCommand(opts),
		newExpiringCommand(opts),
		newExpiredCommand(opts),
		newArchiveCommand(opts),
		newHistoryCommand(opts),
	)
	return cmd
}

// withService opens the service for the duration of fn.
func withService(ctx context.Context, fn func(*services.DocumentService) error) error {
	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

func newCodeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "code <type>",
		Short: "Preview the next code for a document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.DocumentService) error {
				code, err := svc.GenerateCode(cmd.Context(), models.DocumentType(args[0]))
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), models.CodeResponse{Code: code})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
				return err
			})
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the document set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.DocumentService) error {
				stats, err := svc.GetStats(cmd.Context())
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				return writeStats(cmd.OutOrStdout(), stats)
			})
		},
	}
}

func newExpiringCommand(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List documents whose review is due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.DocumentService) error {
				docs, err := svc.GetExpiringSoon(cmd.Context(), days)
				if err != nil {
					return err
				}
				return writeDocuments(cmd.OutOrStdout(), opts, docs)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", services.ExpiringWindowDays, "look-ahead window in days")
	return cmd
}

func newExpiredCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expired",
		Short: "List documents whose review date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.DocumentService) error {
				docs, err := svc.GetExpired(cmd.Context())
				if err != nil {
					return err
				}
				return writeDocuments(cmd.OutOrStdout(), opts, docs)
			})
		},
	}
}

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>...",
		Short: "Hide documents from default listings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.DocumentService) error {
				var archived []models.Document
				for _, id := range args {
					doc, err := svc.Archive(cmd.Context(), id, opts.Actor)
					if err != nil {
						return err
					}
					archived = append(archived, *doc)
				}
				return writeDocuments(cmd.OutOrStdout(), opts, archived)
			})
		},
	}
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a document's version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.DocumentService) error {
				versions, err := svc.GetVersionHistory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), versions)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tVERSION\tCHANGED AT\tBY\tREASON")
				for _, v := range versions {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Version,
						v.ChangedAt.Format("2006-01-02 15:04"), v.ChangedBy, v.ChangeReason)
				}
				return tw.Flush()
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDocuments(w io.Writer, opts *rootOptions, docs []models.Document) error {
	if opts.Format == "json" {
		if docs == nil {
			docs = []models.Document{}
		}
		return writeJSON(w, docs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSTATUS\tVERSION\tREVIEW\tTITLE")
	for _, d := range docs {
		review := "-"
		if d.ReviewDate != nil {
			review = d.ReviewDate.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Code, d.Status, d.Version, review, d.Title)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, s *models.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "total\t%d\n", s.Total)
	fmt.Fprintf(tw, "archived\t%d\n", s.Archived)
	fmt.Fprintf(tw, "expiring soon\t%d\n", s.ExpiringSoon)
	fmt.Fprintf(tw, "expired\t%d\n", s.Expired)
	fmt.Fprintf(tw, "downloads\t%d\n", s.TotalDownloads)
	for _, st := range models.Statuses {
		fmt.Fprintf(tw, "status %s\t%d\n", st, s.ByStatus[st])
	}
	for _, t := range models.DocumentTypes {
		fmt.Fprintf(tw, "type %s\t%d\n", t, s.ByType[t])
	}
	return tw.Flush()
}
