// Package shell is an interactive command line over the editor.
//
// The shell acts as the view: it receives every event the editor emits and
// prints it, and it addresses entities by the numeric IDs `tree` shows.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/dshills/anm2edit/internal/anm2"
	"github.com/dshills/anm2edit/internal/edit"
	"github.com/dshills/anm2edit/internal/logging"
	"github.com/dshills/anm2edit/internal/naming"
	"github.com/dshills/anm2edit/internal/script"
	"github.com/dshills/anm2edit/internal/watch"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit requested")

// Option configures a Shell.
type Option func(*Shell)

// WithOutput sets where command output and events are written.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		s.out = w
	}
}

// WithLogger sets the logger shared with the editor.
func WithLogger(l *logging.Logger) Option {
	return func(s *Shell) {
		s.logger = l
	}
}

// WithCatalog sets the script name catalog.
func WithCatalog(c *naming.Catalog) Option {
	return func(s *Shell) {
		s.names = c
	}
}

// WithMaxUndo sets the number of undo units kept.
func WithMaxUndo(n int) Option {
	return func(s *Shell) {
		s.maxUndo = n
	}
}

// WithWatch enables change notification for the open file. A zero delay
// uses the watcher default.
func WithWatch(enabled bool, delay time.Duration) Option {
	return func(s *Shell) {
		s.watchEnabled = enabled
		s.watchDelay = delay
	}
}

// Shell runs commands against one document.
type Shell struct {
	// mu serializes commands with change notices; the document is not
	// safe for concurrent use.
	mu sync.Mutex

	editor *edit.Editor
	doc    *anm2.Document
	store  *script.Store
	names  *naming.Catalog
	out    io.Writer
	logger *logging.Logger

	maxUndo    int
	showEvents bool
	path       string

	watchEnabled bool
	watchDelay   time.Duration
	watcher      *watch.FileWatcher
}

// New creates a shell with an empty document.
func New(opts ...Option) *Shell {
	s := &Shell{
		out:        os.Stdout,
		logger:     logging.Nop(),
		showEvents: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.names == nil {
		s.names = naming.New(naming.Fallback.String())
	}

	s.store = script.NewStore(script.WithLogger(s.logger))
	s.doc = anm2.New(
		anm2.WithPersistence(s.store),
		anm2.WithMaxUndo(s.maxUndo),
		anm2.WithLogger(s.logger),
	)
	s.editor = edit.New(s.doc,
		edit.WithListener(s),
		edit.WithNamer(s.names),
		edit.WithLogger(s.logger),
	)
	return s
}

// Editor returns the editor the shell drives.
func (s *Shell) Editor() *edit.Editor {
	return s.editor
}

// Path returns the file the document was last opened from or saved to.
func (s *Shell) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// HandleEvent prints a view event.
func (s *Shell) HandleEvent(ev edit.Event) {
	if s.showEvents {
		fmt.Fprintf(s.out, "  event: %s\n", ev)
	}
}

// Close stops watching and detaches the editor.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatch()
	s.editor.Close()
}

// Run reads commands from rl until EOF or quit.
func (s *Shell) Run(rl *readline.Instance) error {
	fmt.Fprintln(s.out, "anm2edit shell. Type 'help' for a list of commands or 'quit' to exit.")
	rl.SetPrompt(s.Prompt())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, "Use 'quit' to exit the program.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		rl.SetPrompt(s.Prompt())
	}
}

// Prompt returns the prompt for the current document.
func (s *Shell) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt()
}

func (s *Shell) prompt() string {
	name := "untitled"
	if s.path != "" {
		name = baseName(s.path)
	}
	if s.doc.IsModified() {
		name += "*"
	}
	return name + "> "
}

// Execute runs one command line.
func (s *Shell) Execute(line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("usage: %s", cmd.syntax)
	}
	return cmd.run(s, args[1:])
}

// ParseArgs splits input on spaces, keeping double-quoted runs together.
// "" yields an empty argument.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes, quoted := false, false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case (char == ' ' || char == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()
	return args
}

func (s *Shell) startWatch() {
	s.stopWatch()
	if !s.watchEnabled || s.path == "" {
		return
	}
	w, err := watch.New(s.path, watch.WithDelay(s.watchDelay), watch.WithLogger(s.logger))
	if err != nil {
		s.logger.Warn("cannot watch %s: %v", s.path, err)
		return
	}
	s.watcher = w
	go s.watchLoop(w)
}

func (s *Shell) stopWatch() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Close(); err != nil {
		s.logger.Debug("closing watcher: %v", err)
	}
	s.watcher = nil
}

func (s *Shell) watchLoop(w *watch.FileWatcher) {
	events, errs := w.Events(), w.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.externalChange(w, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("watch: %v", err)
		}
	}
}

// externalChange prints a notice unless the file on disk still holds the
// body the document last loaded or saved.
func (s *Shell) externalChange(w *watch.FileWatcher, ev watch.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != w {
		return
	}

	if !ev.Op.Exists() {
		fmt.Fprintf(s.out, "notice: %s was removed or renamed\n", s.path)
		return
	}
	_, sum, err := s.store.Load(s.path)
	if err != nil {
		fmt.Fprintf(s.out, "notice: %s changed on disk and cannot be read: %v\n", s.path, err)
		return
	}
	if sum == s.doc.LoadedChecksum() {
		return
	}

	status := "differs from"
	if current, err := s.store.Checksum(s.doc.Content()); err == nil && current == sum {
		status = "matches"
	}
	fmt.Fprintf(s.out, "notice: %s changed on disk; verify: the file %s the open document\n", s.path, status)
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
