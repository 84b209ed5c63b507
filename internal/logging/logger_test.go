package logging

import "testing"

func TestNewLoggerDefaultsToInfoLevel(t *testing.T) {
	l := NewLogger(Config{})
	if l.GetLevel().String() != "info" {
		t.Errorf("got %q, want info", l.GetLevel().String())
	}
}

func TestNewLoggerHonorsExplicitLevel(t *testing.T) {
	l := NewLogger(Config{Level: "debug"})
	if l.GetLevel().String() != "debug" {
		t.Errorf("got %q, want debug", l.GetLevel().String())
	}
}

func TestComponentAndInstanceChain(t *testing.T) {
	l := NewLogger(Config{}).Component("scan").Instance("pg1").Backup("s44we8")
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
}
