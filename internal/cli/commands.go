package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/creatorstation/tracker/internal/models"
	"github.com/creatorstation/tracker/internal/tracker"
)

var (
	listStatus string
	listJSON   bool

	addFlags    draftFlags
	updateFlags draftFlags
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List influencers under the current (or given) filter with total views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		var filter models.FilterStatus
		if listStatus != "" {
			f, ok := models.ParseFilterStatus(listStatus)
			if !ok {
				return fmt.Errorf("unknown status %q", listStatus)
			}
			filter = f
		}

		view := store.View(filter)
		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}
		return printView(cmd.OutOrStdout(), view)
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an influencer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := addFlags.draftFrom(cmd, models.Draft{})
		if err != nil {
			return err
		}

		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		rec, err := store.Create(cmd.Context(), d)
		if err := warnOnPersistence(cmd, err); err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s), total views %s\n", rec.Username, rec.ID, formatViews(rec.TotalViews))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an influencer; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		current, ok := store.Get(args[0])
		if !ok {
			return &tracker.NotFoundError{ID: args[0]}
		}
		d, err := updateFlags.draftFrom(cmd, draftOf(current))
		if err != nil {
			return err
		}

		rec, err := store.Update(cmd.Context(), args[0], d)
		if err := warnOnPersistence(cmd, err); err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s), total views %s\n", rec.Username, rec.ID, formatViews(rec.TotalViews))
		return nil
	},
}

var paidCmd = &cobra.Command{
	Use:   "paid <id>",
	Short: "Mark an influencer as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		rec, err := store.MarkPaid(cmd.Context(), args[0])
		if err := warnOnPersistence(cmd, err); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", rec.Username, rec.Status)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an influencer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		found, err := store.Delete(cmd.Context(), args[0])
		if err := warnOnPersistence(cmd, err); err != nil {
			return err
		}
		if !found {
			return &tracker.NotFoundError{ID: args[0]}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy an influencer to the end of the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		rec, err := store.Duplicate(cmd.Context(), args[0])
		if err := warnOnPersistence(cmd, err); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", rec.Username, rec.ID)
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter [status]",
	Short: "Show or set the saved status filter (All, Posted, Script Needed, Approval Needed, Paid)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), store.Filter())
			return nil
		}

		f, ok := models.ParseFilterStatus(args[0])
		if !ok {
			return fmt.Errorf("unknown status %q", args[0])
		}
		if err := warnOnPersistence(cmd, store.SetFilter(cmd.Context(), f)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Filter set to %s\n", f)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter for this listing only (default: saved filter)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	addFlags.register(addCmd)
	updateFlags.register(updateCmd)
}

// describe expands validation errors into one line per field.
func describe(err error) error {
	var verr *tracker.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid influencer:")
	for _, field := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, verr.Fields[field])
	}
	return errors.New(b.String())
}

func printView(w io.Writer, view tracker.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tPLATFORM\tMEDIAN\tTOTAL\tNOW\tVIDEOS\tSTATUS")
	for _, rec := range view.Records {
		videos := 0
		for _, link := range rec.VideoLinks {
			if link != "" {
				videos++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.ID, rec.Username, rec.Platform,
			formatViews(rec.ViewsMedian), formatViews(rec.TotalViews), formatViews(rec.ViewsNow),
			videos, rec.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(view.Records) == 0 {
		fmt.Fprintln(w, "No influencers found matching the filter or no influencers added yet.")
	}
	_, err := fmt.Fprintf(w, "\nFilter: %s  Total views for campaign: %s\n", view.Filter, formatViews(view.TotalViews))
	return err
}

// formatViews renders a view count with thousands separators.
func formatViews(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
