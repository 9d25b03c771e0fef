package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/client"
	"github.com/spf13/cobra"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		query  catalog.VideoQuery
		sort   string
		order  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Sort = catalog.SortKey(sort)
			query.Order = catalog.SortOrder(order)

			page, err := opts.client().ListVideos(cmd.Context(), query.Normalize())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, page.Videos)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tRATING\tCATEGORY\tTITLE")
			for _, v := range page.Videos {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", v.ID, v.Rating, v.Category, v.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d-%d of %d\n",
				min(int64(page.Offset+1), page.TotalCount), int64(page.Offset)+int64(len(page.Videos)), page.TotalCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query.Search, "query", "q", "", "Title substring or exact tag")
	cmd.Flags().StringVar(&query.Tag, "tag", "", "Exact tag")
	cmd.Flags().StringVar(&query.Category, "category", "", "Exact category")
	cmd.Flags().StringVar(&sort, "sort", string(catalog.SortAdded), "added | published | rating")
	cmd.Flags().StringVar(&order, "order", string(catalog.OrderDesc), "asc | desc")
	cmd.Flags().IntVar(&query.Limit, "limit", catalog.DefaultLimit, "Page size (1-100)")
	cmd.Flags().IntVar(&query.Offset, "offset", 0, "Entries to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the page as JSON")
	return cmd
}

func newGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			entry, err := opts.client().GetVideo(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, entry)
		},
	}
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a video (administrator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			session, err := opts.session(cmd.Context(), c)
			if err != nil {
				return err
			}
			entry, err := c.CreateVideo(cmd.Context(), session, videoBody(cmd))
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd, entry)
		},
	}
	addVideoFlags(cmd)
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEditCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a video (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			body := videoBody(cmd)
			if len(body) == 0 {
				return fmt.Errorf("nothing to change; pass at least one field flag")
			}

			c := opts.client()
			session, err := opts.session(cmd.Context(), c)
			if err != nil {
				return err
			}
			entry, err := c.UpdateVideo(cmd.Context(), session, id, body)
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd, entry)
		},
	}
	addVideoFlags(cmd)
	return cmd
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a video permanently (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			c := opts.client()
			session, err := opts.session(cmd.Context(), c)
			if err != nil {
				return err
			}
			if err := c.DeleteVideo(cmd.Context(), session, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func newAdminCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Report whether --token belongs to the administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := opts.client().IsAdmin(cmd.Context(), opts.token)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]bool{"isAdmin": admin})
		},
	}
}

// videoFlags maps flag names to the entry's JSON field names.
var videoFlags = []struct {
	flag  string
	field catalog.VideoField
	usage string
}{
	{"url", catalog.FieldYoutubeURL, "YouTube URL"},
	{"title", catalog.FieldTitle, "Title"},
	{"thumbnail", catalog.FieldThumbnailURL, "Thumbnail URL (derived from --url when empty)"},
	{"tags", catalog.FieldTags, "Comma-separated tags"},
	{"category", catalog.FieldCategory, "Category"},
	{"good-points", catalog.FieldGoodPoints, "What was good about it"},
	{"memo", catalog.FieldMemo, "Free-form memo"},
	{"publish-date", catalog.FieldPublishDate, `Publish date (YYYY-MM-DD or RFC 3339; "" clears)`},
}

func addVideoFlags(cmd *cobra.Command) {
	for _, f := range videoFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().Int("rating", catalog.DefaultRating, "Rating from 1 to 5")
}

// videoBody holds only the flags the user actually set.
func videoBody(cmd *cobra.Command) map[string]any {
	body := map[string]any{}
	for _, f := range videoFlags {
		if cmd.Flags().Changed(f.flag) {
			value, _ := cmd.Flags().GetString(f.flag)
			body[f.field.String()] = value
		}
	}
	if cmd.Flags().Changed("rating") {
		rating, _ := cmd.Flags().GetInt("rating")
		body[catalog.FieldRating.String()] = rating
	}
	return body
}

// describe expands validation failures into one line per field.
func describe(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	msg := apiErr.Error()
	for field, problem := range apiErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, problem)
	}
	return fmt.Errorf("%s", msg)
}
