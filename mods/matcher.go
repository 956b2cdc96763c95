package mods

import (
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// versionWildcard marks mods that apply to every installed version.
const versionWildcard = "x.x.x"

// baseVersions are the version folders that target an unpatched game.
var baseVersions = []string{"1.0", "1.0.0"}

// VersionLookup reports the installed update version of a title. ok is false
// when no update is installed.
type VersionLookup func(titleID string) (version string, ok bool, err error)

// MatchStats counts what happened to the listing during a Match call.
type MatchStats struct {
	Total         int // entries in the listing
	NonMod        int // directories and files outside exefs/romfs/cheats
	Unparsable    int // mod files whose path has fewer than five segments
	Matched       int // entries attached to a game
	SkippedTitles int // titles whose version lookup failed
}

// Matcher reconciles a remote listing with locally installed titles.
type Matcher struct {
	// URLFor turns a listing path into a download URL.
	URLFor   func(path string) string
	Versions VersionLookup
	LoadDir  string

	log *zap.SugaredLogger
}

func NewMatcher(urlFor func(string) string, versions VersionLookup, loadDir string, log *zap.SugaredLogger) *Matcher {
	return &Matcher{URLFor: urlFor, Versions: versions, LoadDir: loadDir, log: log}
}

type parsedEntry struct {
	entry RemoteEntry
	info  ModPathInfo
}

// Match returns one Game per title id that appears in the listing, in the
// order of titleIDs. Games may have no download entries when none of their
// files fit the installed version; see FilterWithMods.
func (m *Matcher) Match(entries []RemoteEntry, titleIDs []string) ([]Game, MatchStats) {
	stats := MatchStats{Total: len(entries)}

	candidates := make([]parsedEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind != KindFile || !isModContent(e.Path) {
			stats.NonMod++
			continue
		}
		info, ok := ParsePath(e.Path)
		if !ok {
			stats.Unparsable++
			m.log.Debugw("Dropping unparsable listing entry", zap.String("path", e.Path))
			continue
		}
		candidates = append(candidates, parsedEntry{entry: e, info: info})
	}

	var games []Game
	seen := make(map[string]bool, len(titleIDs))
	for _, titleID := range titleIDs {
		if seen[titleID] {
			continue
		}
		seen[titleID] = true

		version, hasUpdate, err := m.Versions(titleID)
		if err != nil {
			stats.SkippedTitles++
			m.log.Warnw("Skipping title, version lookup failed", zap.String("title_id", titleID), zap.Error(err))
			continue
		}

		game := Game{
			TitleID:         titleID,
			TitleVersion:    version,
			HasUpdate:       hasUpdate,
			ModDataLocation: filepath.Join(m.LoadDir, titleID),
		}

		for _, c := range candidates {
			if c.info.TitleID != titleID {
				continue
			}
			if game.TitleName == "" {
				game.TitleName = c.info.TitleName
			}
			if !versionMatches(version, hasUpdate, c.info.TitleVersion) {
				continue
			}
			game.ModDownloadEntries = append(game.ModDownloadEntries, ModDownloadEntry{
				DownloadURL:     m.URLFor(c.entry.Path),
				ModRelativePath: c.info.RelativePath,
				SHA:             c.entry.SHA,
				Size:            c.entry.Size,
			})
		}

		if game.TitleName == "" {
			continue
		}
		stats.Matched += len(game.ModDownloadEntries)
		games = append(games, game)
	}

	m.log.Infow("Matched listing against installed titles",
		zap.Int("entries", stats.Total),
		zap.Int("non_mod", stats.NonMod),
		zap.Int("unparsable", stats.Unparsable),
		zap.Int("matched", stats.Matched),
		zap.Int("games", len(games)),
	)
	return games, stats
}

// versionMatches applies the compatibility rule: exact match, the x.x.x
// wildcard, or a base-game folder when no update is installed.
func versionMatches(installed string, hasUpdate bool, modVersion string) bool {
	switch {
	case hasUpdate && modVersion == installed:
		return true
	case modVersion == versionWildcard:
		return true
	case !hasUpdate && slices.Contains(baseVersions, modVersion):
		return true
	}
	return false
}

// FilterWithMods drops games that have nothing to download.
func FilterWithMods(games []Game) []Game {
	var out []Game
	for _, g := range games {
		if len(g.ModDownloadEntries) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// ModNames returns the distinct mod folder names of a game in first-seen order.
func ModNames(g Game) []string {
	var names []string
	for _, e := range g.ModDownloadEntries {
		name, _, ok := strings.Cut(e.ModRelativePath, "/")
		if !ok || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}
	return names
}
