package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/store"
	"github.com/nhle/too-doo/internal/ui"
)

var (
	listCompleted bool
	listLabel     string
	listPriority  bool
	listDueOnly   bool
	listQuery     string

	addLabel    string
	addDue      string
	addPriority bool
	addBody     string
	addItems    []string
)

func init() {
	listNotesCmd.Flags().BoolVar(&listCompleted, "completed", false, "show completed notes grouped by label")
	listNotesCmd.Flags().StringVarP(&listLabel, "label", "l", "", "only notes with this label ('-' for unlabeled)")
	listNotesCmd.Flags().BoolVarP(&listPriority, "priority", "p", false, "only priority notes")
	listNotesCmd.Flags().BoolVar(&listDueOnly, "by-due", false, "sort by due date alone")
	listNotesCmd.Flags().StringVarP(&listQuery, "search", "q", "", "search title and description")

	addNoteCmd.Flags().StringVarP(&addLabel, "label", "l", "", "label name")
	addNoteCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD, today or tomorrow)")
	addNoteCmd.Flags().BoolVarP(&addPriority, "priority", "p", false, "mark as priority")
	addNoteCmd.Flags().StringVarP(&addBody, "body", "b", "", "description")
	addNoteCmd.Flags().StringSliceVarP(&addItems, "item", "i", nil, "checklist item (repeatable, makes a checklist note)")

	notesCmd.AddCommand(listNotesCmd, addNoteCmd, showNoteCmd,
		completeNoteCmd, revertNoteCmd, priorityNoteCmd, toggleItemCmd,
		deleteNoteCmd, moveNoteCmd, viewModeCmd)
	rootCmd.AddCommand(notesCmd)
}

var notesCmd = &cobra.Command{
	Use:     "notes",
	Aliases: []string{"note", "n"},
	Short:   "Manage notes",
}

var listNotesCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notes",
	Long: `List active notes the way the Active view shows them: priority
first, then by due date, or by position inside each label in label mode.

Examples:
  toodoo notes list
  toodoo notes list --label Work --priority
  toodoo notes list --completed`,
	Args: cobra.NoArgs,
	RunE: withUser(runListNotes),
}

var addNoteCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Create a note",
	Long: `Create a note. Repeating --item makes a checklist note.

Examples:
  toodoo notes add "Call the bank" --due tomorrow --priority
  toodoo notes add Groceries --label Home --item milk --item eggs`,
	Args: cobra.ExactArgs(1),
	RunE: withUser(runAddNote),
}

var showNoteCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		n, err := resolveNote(ctx, e, user.ID, args[0])
		if err != nil {
			return err
		}
		writeNote(cmd.OutOrStdout(), n, time.Now())
		return nil
	}),
}

var completeNoteCmd = &cobra.Command{
	Use:   "complete ID",
	Short: "Mark a note completed",
	Args:  cobra.ExactArgs(1),
	RunE:  withUser(noteAction("Completed", (*notes.Service).CompleteNote)),
}

var revertNoteCmd = &cobra.Command{
	Use:   "revert ID",
	Short: "Move a completed note back to active",
	Args:  cobra.ExactArgs(1),
	RunE:  withUser(noteAction("Reverted", (*notes.Service).RevertNote)),
}

var priorityNoteCmd = &cobra.Command{
	Use:   "priority ID",
	Short: "Toggle the priority flag",
	Args:  cobra.ExactArgs(1),
	RunE:  withUser(noteAction("Toggled priority of", (*notes.Service).TogglePriority)),
}

var toggleItemCmd = &cobra.Command{
	Use:   "toggle ID ITEM",
	Short: "Check or uncheck a checklist item (1-based)",
	Args:  cobra.ExactArgs(2),
	RunE:  withUser(runToggleItem),
}

var deleteNoteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		n, err := resolveNote(ctx, e, user.ID, args[0])
		if err != nil {
			return err
		}
		if err := e.notes.DeleteNote(ctx, user.ID, n.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", n.Title)
		return nil
	}),
}

var moveNoteCmd = &cobra.Command{
	Use:   "move ID POSITION",
	Short: "Move a note to a 1-based position within its label",
	Args:  cobra.ExactArgs(2),
	RunE:  withUser(runMoveNote),
}

var viewModeCmd = &cobra.Command{
	Use:   "view-mode [task|label]",
	Short: "Show or set how active notes are laid out",
	Args:  cobra.MaximumNArgs(1),
	RunE: withUser(func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		if len(args) == 1 {
			mode := model.ViewMode(args[0])
			if mode != model.ViewModeTask && mode != model.ViewModeLabel {
				return fmt.Errorf("view mode must be 'task' or 'label', got %q", args[0])
			}
			if err := e.notes.SetViewMode(ctx, user.ID, mode); err != nil {
				return err
			}
		}
		mode, err := e.notes.ViewMode(ctx, user.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mode)
		return nil
	}),
}

// userRunE is a RunE with a signed in account and open services.
type userRunE func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error

// withUser opens the services and resolves the signed in account before
// calling fn.
func withUser(fn userRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.currentUser(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, e, user, args)
	}
}

func noteAction(
	verb string,
	fn func(s *notes.Service, ctx context.Context, userID, id string) (*model.Note, error),
) userRunE {
	return func(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
		n, err := resolveNote(ctx, e, user.ID, args[0])
		if err != nil {
			return err
		}
		if _, err := fn(e.notes, ctx, user.ID, n.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, n.Title)
		return nil
	}
}

func runListNotes(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, _ []string) error {
	out := cmd.OutOrStdout()
	now := time.Now()

	if listCompleted {
		groups, err := e.notes.FannedGroups(ctx, user.ID)
		if err != nil {
			return err
		}
		writeGroups(out, groups, now)
		return nil
	}

	mode, err := e.notes.ViewMode(ctx, user.ID)
	if err != nil {
		return err
	}
	q := notes.ActiveQuery{
		PriorityOnly: listPriority,
		Query:        listQuery,
		Mode:         mode,
		DueDateOnly:  listDueOnly,
	}
	switch listLabel {
	case "":
	case "-":
		q.Unlabeled = true
	default:
		label, err := resolveLabel(ctx, e, user.ID, listLabel)
		if err != nil {
			return err
		}
		q.LabelID = &label.ID
	}

	if mode == model.ViewModeLabel {
		groups, err := e.notes.LabelGroups(ctx, user.ID, q)
		if err != nil {
			return err
		}
		writeGroups(out, groups, now)
		return nil
	}

	ns, err := e.notes.ActiveNotes(ctx, user.ID, q)
	if err != nil {
		return err
	}
	writeNotes(out, fmt.Sprintf("Active (%d)", len(ns)), ns, now)
	return nil
}

func runAddNote(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
	in := notes.NewNote{
		Title:       args[0],
		Description: addBody,
		IsPriority:  addPriority,
	}
	if len(addItems) > 0 {
		in.IsList = true
		for _, it := range addItems {
			in.Items = append(in.Items, model.ListItem{Text: it})
		}
	}
	if addLabel != "" {
		label, err := resolveLabel(ctx, e, user.ID, addLabel)
		if err != nil {
			return err
		}
		in.LabelID = &label.ID
	}
	due, err := parseDue(addDue, time.Now())
	if err != nil {
		return err
	}
	in.DueDate = due

	n, err := e.notes.CreateNote(ctx, user.ID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", n.Title, shortID(n.ID))
	return nil
}

func runToggleItem(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 1 {
		return fmt.Errorf("item must be a positive number, got %q", args[1])
	}
	n, err := resolveNote(ctx, e, user.ID, args[0])
	if err != nil {
		return err
	}
	res, err := e.notes.ToggleListItem(ctx, user.ID, n.ID, index-1)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	writeNote(out, res.Note, time.Now())
	switch {
	case res.AutoCompleted:
		fmt.Fprintln(out, "All items done, note completed")
	case res.AutoReverted:
		fmt.Fprintln(out, "Note moved back to active")
	}
	return nil
}

func runMoveNote(ctx context.Context, cmd *cobra.Command, e *env, user *model.User, args []string) error {
	to, err := strconv.Atoi(args[1])
	if err != nil || to < 1 {
		return fmt.Errorf("position must be a positive number, got %q", args[1])
	}
	n, err := resolveNote(ctx, e, user.ID, args[0])
	if err != nil {
		return err
	}
	if n.IsCompleted {
		return fmt.Errorf("%w: completed notes cannot be reordered", store.ErrInvalid)
	}

	groups, err := e.notes.LabelGroups(ctx, user.ID, notes.ActiveQuery{Mode: model.ViewModeLabel})
	if err != nil {
		return err
	}
	for _, g := range groups {
		ids := notes.IDs(g.Notes)
		from := indexOf(ids, n.ID)
		if from < 0 {
			continue
		}
		if _, err := e.notes.ReorderNotes(ctx, user.ID, ids, from, min(to, len(ids))-1); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d in %s\n", n.Title, min(to, len(ids)), g.Name)
		return nil
	}
	return fmt.Errorf("note %s: %w", args[0], store.ErrNotFound)
}

// resolveNote finds a note by id or by a unique id prefix.
func resolveNote(ctx context.Context, e *env, userID, ref string) (*model.Note, error) {
	if n, err := e.notes.GetNote(ctx, userID, ref); err == nil {
		return n, nil
	}
	active, err := e.notes.ActiveNotes(ctx, userID, notes.ActiveQuery{})
	if err != nil {
		return nil, err
	}
	completed, err := e.notes.CompletedNotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	var match *model.Note
	for _, n := range append(active, completed...) {
		if !strings.HasPrefix(n.ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: id prefix %q is ambiguous", store.ErrInvalid, ref)
		}
		match = &n
	}
	if match == nil {
		return nil, fmt.Errorf("note %s: %w", ref, store.ErrNotFound)
	}
	return match, nil
}

// resolveLabel finds a label by name, case-insensitively.
func resolveLabel(ctx context.Context, e *env, userID, name string) (*model.Label, error) {
	labels, err := e.notes.ListLabels(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		if strings.EqualFold(l.Name, name) || l.ID == name {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("label %s: %w", name, store.ErrNotFound)
}

// parseDue reads a due date in the local zone. "" means no due date.
func parseDue(s string, now time.Time) (*time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "today":
		return &today, nil
	case "tomorrow":
		t := today.AddDate(0, 0, 1)
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: due date must be YYYY-MM-DD, today or tomorrow", store.ErrInvalid)
	}
	return &t, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	return t
}

func noteRow(n model.Note, now time.Time) table.Row {
	title := n.Title
	if n.IsPriority {
		title = text.FgHiRed.Sprint("! ") + title
	}
	if n.IsList {
		items, err := notes.ParseListItems(n.Description)
		if err == nil {
			done, total := notes.Progress(items)
			title += text.Faint.Sprintf(" [%d/%d]", done, total)
		}
	}
	label := ""
	if n.Label != nil {
		label = n.Label.Name
	}
	due := ""
	if n.DueDate != nil {
		due = ui.DueLabel(*n.DueDate, now)
		if strings.HasPrefix(due, "overdue") {
			due = text.FgRed.Sprint(due)
		}
	}
	return table.Row{shortID(n.ID), title, label, due, ui.RelativeTime(n.CreatedAt, now)}
}

func writeNotes(w io.Writer, title string, ns []model.Note, now time.Time) {
	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"ID", "Title", "Label", "Due", "Created"})
	for _, n := range ns {
		t.AppendRow(noteRow(n, now))
	}
	t.Render()
}

func writeGroups(w io.Writer, groups []notes.Group, now time.Time) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No notes")
		return
	}
	for _, g := range groups {
		writeNotes(w, fmt.Sprintf("%s (%d)", g.Name, len(g.Notes)), g.Notes, now)
	}
}

func writeNote(w io.Writer, n *model.Note, now time.Time) {
	t := newTable(w)
	t.SetTitle(n.Title)
	t.AppendRow(table.Row{"ID", n.ID})
	if n.Label != nil {
		t.AppendRow(table.Row{"Label", n.Label.Name})
	}
	if n.DueDate != nil {
		t.AppendRow(table.Row{"Due", ui.DueLabel(*n.DueDate, now)})
	}
	t.AppendRow(table.Row{"Priority", n.IsPriority})
	t.AppendRow(table.Row{"Completed", n.IsCompleted})
	t.AppendRow(table.Row{"Created", ui.RelativeTime(n.CreatedAt, now)})
	if n.IsList {
		items, err := notes.ParseListItems(n.Description)
		if err == nil {
			for i, it := range items {
				box := "[ ]"
				if it.IsCompleted {
					box = "[x]"
				}
				t.AppendRow(table.Row{strconv.Itoa(i + 1), box + " " + it.Text})
			}
		}
	} else if n.Description != "" {
		t.AppendRow(table.Row{"Details", n.Description})
	}
	t.Render()
}
