package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/knowledge-rag/knowledge-rag-go/client"
)

// runBulk loads the current page so the executor has a cache to draw from,
// then runs the operation and prints the result summary.
func runBulk(cmd *cobra.Command, req client.BulkRequest) error {
	c := newClient()
	defer func() { _ = c.Close() }()
	if err := c.LoadMemories(cmd.Context(), client.ListMemoriesParams{PageSize: 500}); err != nil {
		return err
	}
	res, err := c.ExecuteBulk(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Notification)
	for id, reason := range res.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "  failed %s: %s\n", id, reason)
	}
	for _, d := range res.Downloads {
		fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s (%d bytes)\n", d.Filename, len(d.Data))
	}
	return nil
}

func init() {
	bulkCmd := &cobra.Command{Use: "bulk", Short: "Bulk operations on memories"}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete memories by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd, client.BulkRequest{Kind: client.BulkDelete, TargetIDs: args})
		},
	}
	bulkCmd.AddCommand(deleteCmd)

	var tagInput string
	tagCmd := &cobra.Command{
		Use:   "tag <id>...",
		Short: "Add tags to memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(tagInput) == "" {
				return fmt.Errorf("--tags required")
			}
			return runBulk(cmd, client.BulkRequest{
				Kind: client.BulkTag, TargetIDs: args, TagInput: tagInput,
			})
		},
	}
	tagCmd.Flags().StringVar(&tagInput, "tags", "", "Comma-separated tags to add (required)")
	_ = tagCmd.MarkFlagRequired("tags")
	bulkCmd.AddCommand(tagCmd)

	var moveTo string
	moveCmd := &cobra.Command{
		Use:   "move <id>...",
		Short: "Move memories into a collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if moveTo == "" {
				return fmt.Errorf("--to required")
			}
			return runBulk(cmd, client.BulkRequest{
				Kind: client.BulkMove, TargetIDs: args, CollectionID: moveTo,
			})
		},
	}
	moveCmd.Flags().StringVar(&moveTo, "to", "", "Target collection id (required)")
	_ = moveCmd.MarkFlagRequired("to")
	bulkCmd.AddCommand(moveCmd)

	var formats []string
	var includeMeta bool
	var outDir string
	exportCmd := &cobra.Command{
		Use:   "export <id>...",
		Short: "Export memories to files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fs []client.ExportFormat
			for _, f := range formats {
				switch strings.ToLower(strings.TrimSpace(f)) {
				case "json":
					fs = append(fs, client.FormatJSON)
				case "csv":
					fs = append(fs, client.FormatCSV)
				case "markdown", "md":
					fs = append(fs, client.FormatMarkdown)
				default:
					return fmt.Errorf("unknown format %q", f)
				}
			}
			c := client.New(apiFlag, client.WithDownloadDir(outDir))
			defer func() { _ = c.Close() }()
			if err := c.LoadMemories(cmd.Context(), client.ListMemoriesParams{PageSize: 500}); err != nil {
				return err
			}
			res, err := c.ExecuteBulk(cmd.Context(), client.BulkRequest{
				Kind: client.BulkExport, TargetIDs: args,
				Formats: fs, IncludeMetadata: includeMeta,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Notification)
			for _, d := range res.Downloads {
				fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s (%d bytes)\n", d.Filename, len(d.Data))
			}
			return nil
		},
	}
	exportCmd.Flags().StringSliceVar(&formats, "format", []string{"json"}, "Export formats (json,csv,markdown)")
	exportCmd.Flags().BoolVar(&includeMeta, "include-metadata", false, "Include metadata fields")
	exportCmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	bulkCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(bulkCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live memory events",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			if err := c.LoadMemories(cmd.Context(), client.ListMemoriesParams{PageSize: 100}); err != nil {
				return err
			}
			c.Connect(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "watching (ctrl-c to stop)")
			last := c.Revision()
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-time.After(time.Second):
					if rev := c.Revision(); rev != last {
						last = rev
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %d memories cached\n",
							c.ConnectionIndicator(), len(c.Memories()))
					}
				}
			}
		},
	}
	rootCmd.AddCommand(watchCmd)
}
