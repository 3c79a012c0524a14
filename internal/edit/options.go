package edit

import "github.com/dshills/anm2edit/internal/logging"

// Namer translates a script identifier into a display name. A missing
// translation returns the identifier unchanged.
type Namer interface {
	DisplayName(script string) string
}

type identityNamer struct{}

func (identityNamer) DisplayName(script string) string { return script }

// Option configures an Editor.
type Option func(*Editor)

// WithListener sets the view event listener.
func WithListener(l Listener) Option {
	return func(e *Editor) {
		e.listener = l
	}
}

// WithNamer sets the script naming service used for display text.
func WithNamer(n Namer) Option {
	return func(e *Editor) {
		if n != nil {
			e.namer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}
