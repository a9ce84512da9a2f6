package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/reviewbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidates(t *testing.T) {
	r := NewRegistry()
	bad := map[string]commands.Command{
		"start": {Handler: noop, Description: "no slash"},
		"/":     {Handler: noop, Description: "empty name"},
		"/nil":  {Description: "no handler"},
		"/nod":  {Handler: noop},
	}
	for name, cmd := range bad {
		if err := r.RegisterCommand(name, cmd); !errors.Is(err, ErrInvalidCommand) {
			t.Fatalf("RegisterCommand(%q) err = %v, want ErrInvalidCommand", name, err)
		}
	}

	if err := r.RegisterCommand("/start", commands.Command{Handler: noop, Description: "go"}); err != nil {
		t.Fatalf("RegisterCommand: %v", err)
	}
	if err := r.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"}); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestLookupCommand(t *testing.T) {
	r := NewRegistry()
	_ = r.RegisterCommand("/start", commands.Command{Handler: noop, Description: "go", Aliases: []string{"Начать"}})

	if key, _, ok := r.LookupCommand("/start"); !ok || key != "/start" {
		t.Fatalf("LookupCommand(/start) = %q, %v", key, ok)
	}
	if key, _, ok := r.LookupCommand("Начать"); !ok || key != "/start" {
		t.Fatalf("LookupCommand(alias) = %q, %v", key, ok)
	}
	// review text that happens to be a command word stays text
	if _, _, ok := r.LookupCommand("start"); ok {
		t.Fatal("plain word must not resolve to a command")
	}
}

func TestListCommandsHidesAdminAndHidden(t *testing.T) {
	r := NewRegistry()
	_ = r.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "s", AdminOnly: true})
	_ = r.RegisterCommand("/start", commands.Command{Handler: noop, Description: "go"})
	_ = r.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "d", Hidden: true})
	_ = r.RegisterCommand("/help", commands.Command{Handler: noop, Description: "h"})

	visible := r.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "/help" || visible[1].Text != "/start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := r.ListCommands(false); len(all) != 4 || all[0].Text != "/debug" {
		t.Fatalf("all = %+v", all)
	}
}

func TestRegisterCallback(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterCallback("", noop); !errors.Is(err, ErrInvalidCallback) {
		t.Fatalf("empty key err = %v", err)
	}
	if err := r.RegisterCallback("bonus", nil); !errors.Is(err, ErrInvalidCallback) {
		t.Fatalf("nil handler err = %v", err)
	}
	if err := r.RegisterCallback("bonus", noop); err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}
	if err := r.RegisterCallback("bonus", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	_ = r.RegisterCallback("about", noop)

	if _, ok := r.GetCallback("bonus"); !ok {
		t.Fatal("bonus callback not found")
	}
	if _, ok := r.GetCallback("missing"); ok {
		t.Fatal("unexpected callback")
	}
	if keys := r.ListCallbacks(); len(keys) != 2 || keys[0] != "about" || keys[1] != "bonus" {
		t.Fatalf("ListCallbacks = %v", keys)
	}
}
