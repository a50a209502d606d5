package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/knowledge-rag/knowledge-rag-go/client"
)

func newClient() *client.Client {
	return client.New(apiFlag)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func init() {
	memoriesCmd := &cobra.Command{Use: "memories", Short: "Memory operations"}

	// list
	var page, pageSize int
	var collection, tag string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := c.LoadMemories(ctx, client.ListMemoriesParams{
				Page: page, PageSize: pageSize, CollectionID: collection, Tag: tag,
			}); err != nil {
				return err
			}
			return printJSON(c.Memories())
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&pageSize, "page-size", 50, "Page size")
	listCmd.Flags().StringVar(&collection, "collection", "", "Filter by collection id")
	listCmd.Flags().StringVar(&tag, "tag", "", "Filter by tag")
	memoriesCmd.AddCommand(listCmd)

	// create
	var title, content, tagsFlag string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title required")
			}
			c := newClient()
			defer func() { _ = c.Close() }()
			var tags []string
			if tagsFlag != "" {
				for _, t := range strings.Split(tagsFlag, ",") {
					if t = strings.TrimSpace(t); t != "" {
						tags = append(tags, t)
					}
				}
			}
			m, err := c.CreateMemory(cmd.Context(), client.CreateMemoryRequest{
				Title: title, Content: content, Tags: tags,
			})
			if err != nil {
				return err
			}
			return printJSON(m)
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Memory title (required)")
	createCmd.Flags().StringVarP(&content, "content", "c", "", "Memory content")
	createCmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated tags")
	_ = createCmd.MarkFlagRequired("title")
	memoriesCmd.AddCommand(createCmd)

	rootCmd.AddCommand(memoriesCmd)

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			st, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(st)
		},
	}
	rootCmd.AddCommand(statsCmd)

	// collections
	collectionsCmd := &cobra.Command{Use: "collections", Short: "Collection operations"}
	collectionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			defer func() { _ = c.Close() }()
			cols, err := c.Collections(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cols)
		},
	})
	var colName string
	colCreate := &cobra.Command{
		Use:   "create",
		Short: "Create a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if colName == "" {
				return fmt.Errorf("--name required")
			}
			c := newClient()
			defer func() { _ = c.Close() }()
			col, err := c.CreateCollection(cmd.Context(), colName)
			if err != nil {
				return err
			}
			return printJSON(col)
		},
	}
	colCreate.Flags().StringVarP(&colName, "name", "n", "", "Collection name (required)")
	_ = colCreate.MarkFlagRequired("name")
	collectionsCmd.AddCommand(colCreate)
	rootCmd.AddCommand(collectionsCmd)
}
