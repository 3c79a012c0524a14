package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dshills/anm2edit/internal/anm2"
	"github.com/dshills/anm2edit/internal/edit"
)

type command struct {
	syntax  string
	desc    string
	minArgs int
	run     func(s *Shell, args []string) error
}

// commands is filled in init since help refers back to it.
var commands map[string]command

func init() {
	commands = map[string]command{
		"new":       {"new", "Start an empty document", 0, (*Shell).handleNew},
		"open":      {"open <file>", "Load a script file", 1, (*Shell).handleOpen},
		"save":      {"save [file]", "Save to file, or to the current file", 0, (*Shell).handleSave},
		"verify":    {"verify", "Check the document against the last loaded or saved body", 0, (*Shell).handleVerify},
		"info":      {"info", "Show document metadata and state", 0, (*Shell).handleInfo},
		"label":     {"label <text>", "Set the label", 1, (*Shell).handleLabel},
		"psd":       {"psd <path>", "Set the PSD file path", 1, (*Shell).handlePSD},
		"excl":      {"excl on|off", "Set the exclusive support default", 1, (*Shell).handleExclusive},
		"info-text": {"info-text [text]", "Set the information text; no text unsets it", 0, (*Shell).handleInformation},
		"char":      {"char [id]", "Set the default character ID; no ID unsets it", 0, (*Shell).handleCharacter},
		"sel":       {"sel add <name> [before] | rm <id> | rename <id> <name>", "Edit selectors", 1, (*Shell).handleSelector},
		"item":      {"item add <target> <name> <value> | anim <target> <script> [name] | rm <id> | name|value|script <id> <text>", "Edit items; target is a selector (append) or an item (insert before)", 1, (*Shell).handleItem},
		"param":     {"param add <item> <key> [value] | rm <id> | key|value <id> <text>", "Edit animation item params", 1, (*Shell).handleParam},
		"select":    {"select [id]", "Click an entity; no ID clears the selection", 0, (*Shell).handleSelect},
		"ctrl":      {"ctrl <id>", "Ctrl-click an entity", 1, (*Shell).handleCtrl},
		"shift":     {"shift <id>", "Shift-click an item", 1, (*Shell).handleShift},
		"delete":    {"delete", "Delete the selection", 0, (*Shell).handleDelete},
		"move":      {"move <target> [after]", "Move the selected items onto target", 1, (*Shell).handleMove},
		"movesel":   {"movesel <id> <target> [after]", "Move a selector before or after another", 2, (*Shell).handleMoveSelector},
		"reverse":   {"reverse", "Reverse the items of the focused selector", 0, (*Shell).handleReverse},
		"undo":      {"undo", "Undo the last step", 0, (*Shell).handleUndo},
		"redo":      {"redo", "Redo the last undone step", 0, (*Shell).handleRedo},
		"history":   {"history", "List undo and redo steps", 0, (*Shell).handleHistory},
		"tree":      {"tree", "Print the document with IDs", 0, (*Shell).handleTree},
		"ptkl":      {"ptkl", "List layer export targets of the focused selector", 0, (*Shell).handlePtkl},
		"import":    {"import <selector> <name=value>...", "Append a selector of value items as one step", 1, (*Shell).handleImport},
		"events":    {"events on|off", "Toggle printing of view events", 1, (*Shell).handleEvents},
		"help":      {"help [command]", "Show help", 0, (*Shell).handleHelp},
		"quit":      {"quit", "Exit", 0, (*Shell).handleQuit},
		"exit":      {"exit", "Exit", 0, (*Shell).handleQuit},
	}
}

// CommandNames returns the command names, sorted.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseID(s string) (anm2.ID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", anm2.ErrInvalidArgument, s)
	}
	return anm2.ID(n), nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func isAfter(args []string, i int) (bool, error) {
	if len(args) <= i {
		return false, nil
	}
	if args[i] != "after" {
		return false, fmt.Errorf("expected 'after', got %q", args[i])
	}
	return true, nil
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) handleNew(_ []string) error {
	s.stopWatch()
	s.path = ""
	s.doc.Reset()
	s.printf("new document\n")
	return nil
}

func (s *Shell) handleOpen(args []string) error {
	if err := s.doc.Load(args[0]); err != nil {
		return err
	}
	s.path = args[0]
	s.startWatch()
	s.printf("opened %s: %d selectors\n", s.path, s.doc.SelectorCount())
	return nil
}

func (s *Shell) handleSave(args []string) error {
	path := s.path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no file name; use save <file>")
	}
	if !s.doc.CanSave() {
		return errors.New("nothing to save: set a PSD path and add at least one item")
	}
	if err := s.doc.Save(path); err != nil {
		return err
	}
	if path != s.path || s.watcher == nil {
		s.path = path
		s.startWatch()
	}
	s.printf("saved %s\n", path)
	return nil
}

func (s *Shell) handleVerify(_ []string) error {
	switch {
	case s.doc.LoadedChecksum() == "":
		s.printf("nothing loaded or saved yet\n")
	case s.doc.VerifyChecksum():
		s.printf("checksum matches\n")
	default:
		s.printf("checksum differs: the document changed since it was loaded or saved\n")
	}
	return nil
}

func (s *Shell) handleInfo(_ []string) error {
	info, ok := s.doc.Information()
	if !ok {
		info = "(auto)"
	}
	char, ok := s.doc.DefaultCharacterID()
	if !ok {
		char = "(unset)"
	}
	s.printf("file:        %s\n", s.path)
	s.printf("label:       %s\n", s.doc.Label())
	s.printf("psd:         %s\n", s.doc.PSDPath())
	s.printf("exclusive:   %t\n", s.doc.ExclusiveSupportDefault())
	s.printf("information: %s\n", info)
	s.printf("character:   %s\n", char)
	s.printf("selectors:   %d\n", s.doc.SelectorCount())
	s.printf("modified:    %t\n", s.doc.IsModified())
	s.printf("can save:    %t\n", s.doc.CanSave())
	s.printf("undo/redo:   %d/%d\n", s.doc.UndoCount(), s.doc.RedoCount())
	return nil
}

func (s *Shell) handleLabel(args []string) error {
	return s.editor.SetLabel(strings.Join(args, " "))
}

func (s *Shell) handlePSD(args []string) error {
	return s.editor.SetPSDPath(strings.Join(args, " "))
}

func (s *Shell) handleExclusive(args []string) error {
	v, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	return s.editor.SetExclusiveSupportDefault(v)
}

func (s *Shell) handleInformation(args []string) error {
	return s.editor.SetInformation(strings.Join(args, " "))
}

func (s *Shell) handleCharacter(args []string) error {
	return s.editor.SetDefaultCharacterID(strings.Join(args, " "))
}

func (s *Shell) handleSelector(args []string) error {
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		if len(rest) < 1 {
			return errors.New("usage: sel add <name> [before]")
		}
		var before anm2.ID
		if len(rest) > 1 {
			id, err := parseID(rest[1])
			if err != nil {
				return err
			}
			before = id
		}
		id, err := s.editor.InsertSelector(before, rest[0])
		if err != nil {
			return err
		}
		s.printf("created selector %d\n", id)
		return nil
	case "rm":
		if len(rest) < 1 {
			return errors.New("usage: sel rm <id>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		return s.doc.SelectorRemove(id)
	case "rename":
		if len(rest) < 2 {
			return errors.New("usage: sel rename <id> <name>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		return s.editor.SetSelectorName(id, strings.Join(rest[1:], " "))
	}
	return fmt.Errorf("unknown sel command: %s", sub)
}

func (s *Shell) handleItem(args []string) error {
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		if len(rest) < 3 {
			return errors.New("usage: item add <target> <name> <value>")
		}
		target, err := parseID(rest[0])
		if err != nil {
			return err
		}
		id, err := s.editor.InsertValueItem(target, rest[1], rest[2])
		if err != nil {
			return err
		}
		s.printf("created item %d\n", id)
		return nil
	case "anim":
		if len(rest) < 2 {
			return errors.New("usage: item anim <target> <script> [name]")
		}
		target, err := parseID(rest[0])
		if err != nil {
			return err
		}
		name := ""
		if len(rest) > 2 {
			name = rest[2]
		}
		id, err := s.editor.InsertAnimationItem(target, rest[1], name)
		if err != nil {
			return err
		}
		s.printf("created item %d\n", id)
		return nil
	case "rm":
		if len(rest) < 1 {
			return errors.New("usage: item rm <id>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		return s.doc.ItemRemove(id)
	case "name", "value", "script":
		if len(rest) < 1 {
			return fmt.Errorf("usage: item %s <id> <text>", sub)
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		text := strings.Join(rest[1:], " ")
		switch sub {
		case "name":
			return s.editor.SetItemName(id, text)
		case "value":
			return s.editor.SetItemValue(id, text)
		default:
			return s.editor.SetItemScriptName(id, text)
		}
	}
	return fmt.Errorf("unknown item command: %s", sub)
}

func (s *Shell) handleParam(args []string) error {
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		if len(rest) < 2 {
			return errors.New("usage: param add <item> <key> [value]")
		}
		item, err := parseID(rest[0])
		if err != nil {
			return err
		}
		id, err := s.editor.InsertParam(item, 0, rest[1], strings.Join(rest[2:], " "))
		if err != nil {
			return err
		}
		s.printf("created param %d\n", id)
		return nil
	case "rm":
		if len(rest) < 1 {
			return errors.New("usage: param rm <id>")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		return s.editor.RemoveParam(id)
	case "key", "value":
		if len(rest) < 1 {
			return fmt.Errorf("usage: param %s <id> <text>", sub)
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		text := strings.Join(rest[1:], " ")
		if sub == "key" {
			return s.editor.SetParamKey(id, text)
		}
		return s.editor.SetParamValue(id, text)
	}
	return fmt.Errorf("unknown param command: %s", sub)
}

func (s *Shell) click(arg string, ctrl, shift bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	return s.editor.ApplyTreeviewSelection(id, s.doc.Kind(id) == anm2.KindSelector, ctrl, shift)
}

func (s *Shell) handleSelect(args []string) error {
	if len(args) == 0 {
		s.editor.ClearSelection()
		return nil
	}
	return s.click(args[0], false, false)
}

func (s *Shell) handleCtrl(args []string) error {
	return s.click(args[0], true, false)
}

func (s *Shell) handleShift(args []string) error {
	return s.click(args[0], false, true)
}

func (s *Shell) handleDelete(_ []string) error {
	return s.editor.DeleteSelected()
}

func (s *Shell) handleMove(args []string) error {
	target, err := parseID(args[0])
	if err != nil {
		return err
	}
	after, err := isAfter(args, 1)
	if err != nil {
		return err
	}
	ids := s.editor.Selection().SelectedIDs()
	if len(ids) == 0 {
		return errors.New("no items selected")
	}
	isSelector := s.doc.Kind(target) == anm2.KindSelector
	if !s.editor.WouldMoveItems(ids, target, isSelector, after) {
		s.printf("nothing to move\n")
		return nil
	}
	return s.editor.MoveItems(ids, target, isSelector, after)
}

func (s *Shell) handleMoveSelector(args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	target, err := parseID(args[1])
	if err != nil {
		return err
	}
	after, err := isAfter(args, 2)
	if err != nil {
		return err
	}
	return s.editor.MoveSelector(id, target, after)
}

func (s *Shell) handleReverse(_ []string) error {
	return s.editor.ReverseFocusSelector()
}

func (s *Shell) handleUndo(_ []string) error {
	return s.editor.Undo()
}

func (s *Shell) handleRedo(_ []string) error {
	return s.editor.Redo()
}

func (s *Shell) handleHistory(_ []string) error {
	undo, redo := s.doc.UndoInfo(), s.doc.RedoInfo()
	if len(undo) == 0 && len(redo) == 0 {
		s.printf("history is empty\n")
		return nil
	}
	for i, info := range undo {
		s.printf("  %3d  %s (%d)\n", i+1, info.Description, info.Commands)
	}
	if len(redo) > 0 {
		s.printf("  --- redo ---\n")
		for i, info := range redo {
			s.printf("  %3d  %s (%d)\n", i+1, info.Description, info.Commands)
		}
	}
	return nil
}

func (s *Shell) marker(id anm2.ID) string {
	sel := s.editor.Selection()
	m := " "
	if sel.IsSelected(id) {
		m = "*"
	}
	if sel.Focus().ID == id {
		m += ">"
	} else {
		m += " "
	}
	return m
}

func (s *Shell) handleTree(_ []string) error {
	if s.doc.SelectorCount() == 0 {
		s.printf("(empty)\n")
		return nil
	}
	for _, selID := range s.doc.SelectorIDs() {
		name, _ := s.doc.SelectorName(selID)
		s.printf("%s %d %q\n", s.marker(selID), selID, name)
		for _, itemID := range s.doc.ItemIDs(selID) {
			display := s.editor.ItemDisplayName(itemID)
			if !s.doc.ItemIsAnimation(itemID) {
				value, _ := s.doc.ItemValue(itemID)
				s.printf("%s   %d %q = %q\n", s.marker(itemID), itemID, display, value)
				continue
			}
			script, _ := s.doc.ItemScriptName(itemID)
			s.printf("%s   %d %q [%s]\n", s.marker(itemID), itemID, display, script)
			for _, paramID := range s.doc.ParamIDs(itemID) {
				key, _ := s.doc.ParamKey(paramID)
				value, _ := s.doc.ParamValue(paramID)
				s.printf("       %d %s = %q\n", paramID, key, value)
			}
		}
	}
	return nil
}

func (s *Shell) handlePtkl(_ []string) error {
	targets := s.editor.CollectPtklTargets()
	if len(targets) == 0 {
		s.printf("no targets\n")
		return nil
	}
	for _, t := range targets {
		s.printf("  %d/%d/%d  %s > %s (%s) > %s\n",
			t.SelectorIndex, t.ItemIndex, t.ParamIndex,
			t.SelectorName, t.ItemName, t.EffectName, strings.TrimSuffix(t.Key, edit.PtklSuffix))
	}
	return nil
}

func (s *Shell) handleImport(args []string) error {
	entries := make([]edit.ImportEntry, 0, len(args)-1)
	for _, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			value = name
		}
		entries = append(entries, edit.ImportEntry{Name: name, Value: value})
	}
	id, err := s.editor.Import(args[0], entries)
	if err != nil {
		return err
	}
	s.printf("created selector %d with %d items\n", id, len(entries))
	return nil
}

func (s *Shell) handleEvents(args []string) error {
	v, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	s.showEvents = v
	return nil
}

func (s *Shell) handleHelp(args []string) error {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		s.printf("Syntax: %s\nDescription: %s\n", cmd.syntax, cmd.desc)
		return nil
	}
	s.printf("Available commands:\n")
	for _, name := range CommandNames() {
		s.printf("  %-10s %s\n", name, commands[name].desc)
	}
	s.printf("\nUse 'help <command>' for more information about a specific command.\n")
	return nil
}

func (s *Shell) handleQuit(_ []string) error {
	if s.doc.IsModified() {
		s.printf("discarding unsaved changes\n")
	}
	return ErrQuit
}

var subcommands = map[string][]string{
	"sel":    {"add", "rm", "rename"},
	"item":   {"add", "anim", "rm", "name", "value", "script"},
	"param":  {"add", "rm", "key", "value"},
	"excl":   {"on", "off"},
	"events": {"on", "off"},
}

// Completer completes command names and subcommands.
func Completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range CommandNames() {
		var subs []readline.PrefixCompleterInterface
		for _, sub := range subcommands[name] {
			subs = append(subs, readline.PcItem(sub))
		}
		if name == "help" {
			for _, n := range CommandNames() {
				subs = append(subs, readline.PcItem(n))
			}
		}
		items = append(items, readline.PcItem(name, subs...))
	}
	return readline.NewPrefixCompleter(items...)
}
