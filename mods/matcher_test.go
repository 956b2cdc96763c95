package mods

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want ModPathInfo
		ok   bool
	}{
		{
			"mods/Zelda/[0100ABCD00000000]/1.0.0/romfs/file.bin",
			ModPathInfo{TitleName: "Zelda", TitleID: "0100ABCD00000000", TitleVersion: "1.0.0", RelativePath: "romfs/file.bin"},
			true,
		},
		{
			"root/Game Name/[0100000000010000]/x.x.x/60fps/exefs/a/b/c.ips",
			ModPathInfo{TitleName: "Game Name", TitleID: "0100000000010000", TitleVersion: "x.x.x", RelativePath: "60fps/exefs/a/b/c.ips"},
			true,
		},
		{
			"root/Name/0100000000010000/1.0/file",
			ModPathInfo{TitleName: "Name", TitleID: "0100000000010000", TitleVersion: "1.0", RelativePath: "file"},
			true,
		},
		{"root/Name/[01]/1.0", ModPathInfo{}, false},
		{"root/Name", ModPathInfo{}, false},
		{"", ModPathInfo{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ParsePath(tt.path)
			if ok != tt.ok {
				t.Fatalf("ParsePath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParsePath(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsModContent(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"mods/A/[01]/1.0/m/romfs/x", true},
		{"mods/A/[01]/1.0/m/exefs/x.pchtxt", true},
		{"mods/A/[01]/1.0/m/cheats/x.txt", true},
		{"mods/A/[01]/1.0/m/readme.md", false},
		{"mods/A/[01]/1.0/myromfs/x", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := isModContent(tt.path); got != tt.want {
			t.Errorf("isModContent(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestVersionMatches(t *testing.T) {
	tests := []struct {
		name       string
		installed  string
		hasUpdate  bool
		modVersion string
		want       bool
	}{
		{"exact", "1.2.0", true, "1.2.0", true},
		{"different", "1.2.0", true, "1.3.0", false},
		{"wildcard with update", "1.2.0", true, "x.x.x", true},
		{"wildcard without update", "", false, "x.x.x", true},
		{"base 1.0 without update", "", false, "1.0", true},
		{"base 1.0.0 without update", "", false, "1.0.0", true},
		{"patched version without update", "", false, "1.2.0", false},
		{"base version with update", "2.0.0", true, "1.0.0", false},
		{"base version equal to installed", "1.0.0", true, "1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionMatches(tt.installed, tt.hasUpdate, tt.modVersion); got != tt.want {
				t.Errorf("versionMatches(%q, %v, %q) = %v, want %v", tt.installed, tt.hasUpdate, tt.modVersion, got, tt.want)
			}
		})
	}
}

type versions map[string]string

func (v versions) lookup(titleID string) (string, bool, error) {
	ver, ok := v[titleID]
	return ver, ok, nil
}

func file(path string) RemoteEntry { return RemoteEntry{Path: path, Kind: KindFile, SHA: "sha-" + path} }
func dir(path string) RemoteEntry  { return RemoteEntry{Path: path, Kind: KindDirectory} }

func newTestMatcher(v versions) *Matcher {
	return NewMatcher(func(p string) string { return "https://raw.example/" + p }, v.lookup, "/load", zap.NewNop().Sugar())
}

const zeldaID = "0100ABCD00000000"

func TestMatchBaseVersionWithoutUpdate(t *testing.T) {
	entries := []RemoteEntry{file("mods/Zelda/[0100ABCD00000000]/1.0.0/romfs/file.bin")}

	games, stats := newTestMatcher(versions{}).Match(entries, []string{zeldaID})

	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	g := games[0]
	if g.TitleName != "Zelda" || g.TitleID != zeldaID || g.HasUpdate {
		t.Errorf("unexpected game %+v", g)
	}
	if g.ModDataLocation != filepath.Join("/load", zeldaID) {
		t.Errorf("ModDataLocation = %q", g.ModDataLocation)
	}
	if len(g.ModDownloadEntries) != 1 {
		t.Fatalf("got %d entries, want 1", len(g.ModDownloadEntries))
	}
	e := g.ModDownloadEntries[0]
	if e.ModRelativePath != "romfs/file.bin" {
		t.Errorf("ModRelativePath = %q, want romfs/file.bin", e.ModRelativePath)
	}
	if e.DownloadURL != "https://raw.example/mods/Zelda/[0100ABCD00000000]/1.0.0/romfs/file.bin" {
		t.Errorf("DownloadURL = %q", e.DownloadURL)
	}
	if stats.Matched != 1 {
		t.Errorf("stats.Matched = %d, want 1", stats.Matched)
	}
}

func TestMatchBaseVersionWithUpdateInstalled(t *testing.T) {
	entries := []RemoteEntry{file("mods/Zelda/[0100ABCD00000000]/1.0.0/romfs/file.bin")}

	games, _ := newTestMatcher(versions{zeldaID: "2.0.0"}).Match(entries, []string{zeldaID})

	if len(games) != 1 {
		t.Fatalf("game should still be emitted, got %d games", len(games))
	}
	if games[0].TitleVersion != "2.0.0" || !games[0].HasUpdate {
		t.Errorf("unexpected version state %+v", games[0])
	}
	if len(games[0].ModDownloadEntries) != 0 {
		t.Errorf("expected no entries, got %d", len(games[0].ModDownloadEntries))
	}
	if filtered := FilterWithMods(games); len(filtered) != 0 {
		t.Errorf("FilterWithMods kept %d games, want 0", len(filtered))
	}
}

func TestMatchWildcardAlwaysIncluded(t *testing.T) {
	entries := []RemoteEntry{
		file("mods/Zelda/[0100ABCD00000000]/1.0.0/romfs/file.bin"),
		file("mods/Zelda/[0100ABCD00000000]/x.x.x/cheats/cheat.txt"),
	}

	for _, v := range []versions{{}, {zeldaID: "2.0.0"}, {zeldaID: "1.0.0"}} {
		games, _ := newTestMatcher(v).Match(entries, []string{zeldaID})
		if len(games) != 1 {
			t.Fatalf("versions %v: got %d games", v, len(games))
		}
		var found bool
		for _, e := range games[0].ModDownloadEntries {
			if e.ModRelativePath == "cheats/cheat.txt" {
				found = true
			}
		}
		if !found {
			t.Errorf("versions %v: wildcard entry missing from %+v", v, games[0].ModDownloadEntries)
		}
	}
}

func TestMatchFirstNameWins(t *testing.T) {
	entries := []RemoteEntry{
		file("mods/Zelda TOTK/[0100ABCD00000000]/9.9.9/romfs/a"),
		file("mods/Zelda/[0100ABCD00000000]/1.0.0/romfs/b"),
		file("mods/Tears/[0100ABCD00000000]/x.x.x/romfs/c"),
	}

	games, _ := newTestMatcher(versions{}).Match(entries, []string{zeldaID})

	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].TitleName != "Zelda TOTK" {
		t.Errorf("TitleName = %q, want the first name in listing order", games[0].TitleName)
	}
	want := []string{"romfs/b", "romfs/c"}
	var got []string
	for _, e := range games[0].ModDownloadEntries {
		got = append(got, e.ModRelativePath)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestMatchFiltersAndCounts(t *testing.T) {
	entries := []RemoteEntry{
		dir("mods"),
		dir("mods/Zelda/[0100ABCD00000000]/1.0.0/m/romfs"),
		file("README.md"),
		file("mods/Zelda/[0100ABCD00000000]/1.0.0/m/info.txt"),
		file("x/romfs/y"),
		file("mods/Zelda/[0100abcd00000000]/1.0.0/m/romfs/lower"),
		file("mods/Zelda/[0100ABCD00000000]/1.0.0/m/romfs/ok"),
	}

	games, stats := newTestMatcher(versions{}).Match(entries, []string{zeldaID, "0100FFFF00000000"})

	if len(games) != 1 {
		t.Fatalf("got %d games, want 1 (unknown titles are dropped)", len(games))
	}
	if len(games[0].ModDownloadEntries) != 1 || games[0].ModDownloadEntries[0].ModRelativePath != "m/romfs/ok" {
		t.Errorf("unexpected entries %+v", games[0].ModDownloadEntries)
	}
	if stats.Total != 7 || stats.NonMod != 4 || stats.Unparsable != 1 || stats.Matched != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestMatchUniqueTitlesAndOrder(t *testing.T) {
	entries := []RemoteEntry{
		file("mods/B/[0100000000000B00]/x.x.x/m/romfs/b"),
		file("mods/A/[0100000000000A00]/x.x.x/m/romfs/a"),
	}

	games, _ := newTestMatcher(versions{}).Match(entries, []string{"0100000000000A00", "0100000000000B00", "0100000000000A00"})

	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[0].TitleID != "0100000000000A00" || games[1].TitleID != "0100000000000B00" {
		t.Errorf("games not in title id order: %s, %s", games[0].TitleID, games[1].TitleID)
	}
}

func TestMatchSkipsTitleOnLookupError(t *testing.T) {
	entries := []RemoteEntry{file("mods/Zelda/[0100ABCD00000000]/x.x.x/romfs/a")}
	m := newTestMatcher(versions{})
	m.Versions = func(string) (string, bool, error) { return "", false, errors.New("unreadable") }

	games, stats := m.Match(entries, []string{zeldaID})

	if len(games) != 0 {
		t.Errorf("expected title to be skipped, got %+v", games)
	}
	if stats.SkippedTitles != 1 {
		t.Errorf("stats.SkippedTitles = %d, want 1", stats.SkippedTitles)
	}
}

func TestModNames(t *testing.T) {
	g := Game{ModDownloadEntries: []ModDownloadEntry{
		{ModRelativePath: "60fps/exefs/main.ips"},
		{ModRelativePath: "60fps/exefs/other.ips"},
		{ModRelativePath: "HD/romfs/tex.bin"},
		{ModRelativePath: "loose-file"},
	}}

	got := ModNames(g)
	want := []string{"60fps", "HD"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ModNames() = %v, want %v", got, want)
	}
}
