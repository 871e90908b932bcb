// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"casetracker/internal/models"
	"casetracker/internal/store"
	"casetracker/internal/tree"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage case categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a category",
	Example: `  casetracker category add --name Billing
  casetracker category add --name Refunds --parent 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		parent, _ := cmd.Flags().GetInt64("parent")
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		var parentID *int64
		if cmd.Flags().Changed("parent") {
			parentID = &parent
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		c, err := store.NewCategoryStore(db).Create(cmd.Context(), name, parentID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created category %d %q (level %d)\n", c.ID, c.Name, c.Level)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the category tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		cats, err := store.NewCategoryStore(db).List(cmd.Context())
		if err != nil {
			return err
		}
		return printTree(cmd.OutOrStdout(), cats)
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a category that no case or subcategory references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.NewCategoryStore(db).Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d\n", id)
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().String("name", "", "category name")
	categoryAddCmd.Flags().Int64("parent", 0, "parent category id (omit for a root)")
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryDeleteCmd)
	rootCmd.AddCommand(categoryCmd)
}

// printTree writes the full-depth forest, one category per line, indented
// by depth.
func printTree(w io.Writer, cats []models.Category) error {
	roots, err := tree.Build(cats)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		fmt.Fprintln(w, "No categories")
		return nil
	}
	tree.Walk(roots, func(n *tree.Node, depth int) {
		fmt.Fprintf(w, "%s%d  %s\n", strings.Repeat("  ", depth), n.ID, n.Name)
	})
	return nil
}
