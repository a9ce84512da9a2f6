package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrInvalidCommand is returned for commands without a slash-prefixed
	// name, a handler or a description.
	ErrInvalidCommand = errors.New("telegram: invalid command registration")
	// ErrInvalidCallback is returned for callbacks without a key or handler.
	ErrInvalidCallback = errors.New("telegram: invalid callback registration")
)

// Registry holds the commands and callback handlers of a bot. Commands are
// registered before the bot starts; callbacks may be added at any time.
type Registry struct {
	commands map[string]commands.Command

	mu        sync.RWMutex
	callbacks map[string]tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds cmd under name, e.g. "/start".
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if !strings.HasPrefix(name, "/") || len(name) == 1 || cmd.Handler == nil || cmd.Description == "" {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, name)
	}
	if _, dup := r.commands[name]; dup {
		return fmt.Errorf("telegram: command %s already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

// ListCommands returns commands sorted by name. With visibleOnly, hidden
// and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int {
		return strings.Compare(a.Text, b.Text)
	})
	return list
}

// LookupCommand resolves an exact command name or alias to the registered
// key. Plain words are not commands, so "start" does not match "/start".
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		if slices.Contains(cmd.Aliases, name) {
			return key, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// Commands returns the registered commands keyed by name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback maps the unique key of inline buttons to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return ErrInvalidCallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		return fmt.Errorf("telegram: callback %s already registered", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// InitBotCommands publishes the visible commands in the client menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.Error(context.Background(), "tg.wire", "register.commands",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
