package buildinfo

import (
	"runtime/debug"
	"testing"
)

func reset(t *testing.T, version, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	t.Run("defaults", func(t *testing.T) {
		reset(t, devVersion, unknownCommit, unknownDate)
		fill(bi)
		if Version != "v0.3.1" || Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
			t.Errorf("got %s %s %s", Version, Commit, Date)
		}
	})

	t.Run("ldflags win", func(t *testing.T) {
		reset(t, "v1.0.0", "deadbeef", "yesterday")
		fill(bi)
		if Version != "v1.0.0" || Commit != "deadbeef" || Date != "yesterday" {
			t.Errorf("got %s %s %s", Version, Commit, Date)
		}
	})

	t.Run("devel build", func(t *testing.T) {
		reset(t, devVersion, unknownCommit, unknownDate)
		fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		if Version != devVersion {
			t.Errorf("Version = %s, want %s", Version, devVersion)
		}
	})
}

func TestTemplate(t *testing.T) {
	reset(t, "v1.2.3", "c0ffee", "today")
	got := Template()
	want := "{{.Name}} version v1.2.3\ncommit: c0ffee\nbuilt: today\n"
	if got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
	if f := Fields(); len(f) != 6 || f[1] != "v1.2.3" {
		t.Errorf("Fields() = %v", f)
	}
}
