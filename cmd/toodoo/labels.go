package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/store"
)

var (
	labelColor string
	labelName  string
)

func init() {
	addLabelCmd.Flags().StringVarP(&labelColor, "color", "c", "", "color name or #hex")
	editLabelCmd.Flags().StringVarP(&labelColor, "color", "c", "", "new color name or #hex")
	editLabelCmd.Flags().StringVarP(&labelName, "name", "n", "", "new name")

	labelsCmd.AddCommand(listLabelsCmd, addLabelCmd, editLabelCmd, deleteLabelCmd, moveLabelCmd)
	rootCmd.AddCommand(labelsCmd)
}

var labelsCmd = &cobra.Command{
	Use:     "labels",
	Aliases: []string{"label", "l"},
	Short:   "Manage labels",
}

var listLabelsCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels in their manual order with active note counts",
	Args:  cobra.NoArgs,
	RunE:  withUser(runListLabels),
}

var addLabelCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a label",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		color, err := parseColor(labelColor)
		if err != nil {
			return err
		}
		label, err := e.notes.CreateLabel(ctx, user.ID, args[0], color)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created label %s\n", label.Name)
		return nil
	}),
}

var editLabelCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Rename or recolor a label",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		label, err := resolveLabel(ctx, e, user.ID, args[0])
		if err != nil {
			return err
		}
		color, err := parseColor(labelColor)
		if err != nil {
			return err
		}
		updated, err := e.notes.UpdateLabel(ctx, user.ID, label.ID, labelName, color)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated label %s\n", updated.Name)
		return nil
	}),
}

var deleteLabelCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a label; its notes become unlabeled",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		label, err := resolveLabel(ctx, e, user.ID, args[0])
		if err != nil {
			return err
		}
		if err := e.notes.DeleteLabel(ctx, user.ID, label.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted label %s\n", label.Name)
		return nil
	}),
}

var moveLabelCmd = &cobra.Command{
	Use:   "move NAME POSITION",
	Short: "Move a label to a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		to, err := strconv.Atoi(args[1])
		if err != nil || to < 1 {
			return fmt.Errorf("position must be a positive number, got %q", args[1])
		}
		label, err := resolveLabel(ctx, e, user.ID, args[0])
		if err != nil {
			return err
		}
		labels, err := e.notes.ListLabels(ctx, user.ID)
		if err != nil {
			return err
		}
		ids := make([]string, len(labels))
		for i, l := range labels {
			ids[i] = l.ID
		}
		to = min(to, len(ids))
		if _, err := e.notes.ReorderLabels(ctx, user.ID, ids, indexOf(ids, label.ID), to-1); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", label.Name, to)
		return nil
	}),
}

func runListLabels(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, _ []string) error {
	labels, err := e.notes.ListLabels(ctx, user.ID)
	if err != nil {
		return err
	}
	counts, err := e.notes.LabelCounts(ctx, user.ID, true)
	if err != nil {
		return err
	}
	byLabel := make(map[string]int, len(counts))
	for _, c := range counts {
		key := ""
		if c.LabelID != nil {
			key = *c.LabelID
		}
		byLabel[key] = c.Count
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Name", "Color", "Active"})
	for i, l := range labels {
		t.AppendRow(table.Row{i + 1, l.Name, l.Color, byLabel[l.ID]})
	}
	t.AppendFooter(table.Row{"", notes.GroupUncategorized, "", byLabel[""]})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	t.Render()
	return nil
}

// parseColor accepts a palette name or a #rrggbb value. "" keeps the
// default.
func parseColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, c := range model.LabelPalette {
		if strings.EqualFold(c.Name, s) {
			return c.Value, nil
		}
	}
	if len(s) == 7 && s[0] == '#' {
		if _, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return strings.ToUpper(s), nil
		}
	}
	return "", fmt.Errorf("%w: unknown color %q", store.ErrInvalid, s)
}
