// Package commands describes slash commands held by the telegram registry.
package commands

import tele "gopkg.in/telebot.v4"

// Command is a registered slash command.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly restricts the command to the administrator roster and keeps
	// it out of the public command menu.
	AdminOnly bool
	// Hidden keeps the command out of the public command menu.
	Hidden bool
	// Aliases are plain-text triggers matched exactly, e.g. a reply button label.
	Aliases []string
}
