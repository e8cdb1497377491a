package main

import (
	"errors"
	"testing"
)

func TestCommandArgs(t *testing.T) {
	var args = NewCommandArgs([]string{"brilliant", "features", "-threads", "4", "--labels", "true", "-split"})
	if args.CommandName() != "features" {
		t.Errorf("command %q", args.CommandName())
	}
	if args.GetString("threads", "") != "4" || !args.GetBool("labels", false) {
		t.Errorf("params %v", args.Params())
	}
	if args.GetBool("split", false) || args.GetString("moves_dir", "moves") != "moves" {
		t.Errorf("defaults not applied: %v", args.Params())
	}
}

func TestCommandArgsValueLooksLikeCommand(t *testing.T) {
	var args = NewCommandArgs([]string{"brilliant", "-config", "prod.yaml", "train"})
	if args.CommandName() != "train" || args.GetString("config", "") != "prod.yaml" {
		t.Errorf("command %q params %v", args.CommandName(), args.Params())
	}
}

func TestCommandHandler(t *testing.T) {
	var ch = NewCommandHandler()
	var errTest = errors.New("test")
	ch.Add("fail", func() error { return errTest })
	ch.Add("ok", func() error { return nil })
	if err := ch.Execute("ok"); err != nil {
		t.Error(err)
	}
	if err := ch.Execute("fail"); !errors.Is(err, errTest) {
		t.Errorf("got %v", err)
	}
	if err := ch.Execute("unknown"); err == nil {
		t.Error("unknown command accepted")
	}
}
