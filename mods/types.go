// Package mods matches a remote mod repository listing against locally
// installed titles and downloads the matched files into the emulator's
// load directory.
package mods

import (
	"switch-mod-downloader/github"
)

// Kind distinguishes files from directories in a remote listing.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// RemoteEntry is one row of the remote listing.
type RemoteEntry struct {
	Path string
	Kind Kind
	SHA  string
	Size *int64
}

// EntriesFromTree flattens a git tree response into remote entries.
func EntriesFromTree(tree *github.Tree) []RemoteEntry {
	entries := make([]RemoteEntry, 0, len(tree.Tree))
	for _, e := range tree.Tree {
		kind := KindFile
		if e.Type != github.TypeBlob {
			kind = KindDirectory
		}
		entries = append(entries, RemoteEntry{Path: e.Path, Kind: kind, SHA: e.SHA, Size: e.Size})
	}
	return entries
}

// ModPathInfo is the parsed form of
// {root}/{title_name}/[{title_id}]/{title_version}/{relative_path}.
type ModPathInfo struct {
	TitleName    string
	TitleID      string
	TitleVersion string
	RelativePath string
}

// Game is one locally installed title together with the mod files that apply to it.
type Game struct {
	TitleID            string
	TitleName          string
	TitleVersion       string // installed update, valid only when HasUpdate
	HasUpdate          bool
	ModDataLocation    string
	ModDownloadEntries []ModDownloadEntry
}

// ModDownloadEntry positions one remote file under a game's mod directory.
type ModDownloadEntry struct {
	DownloadURL     string
	ModRelativePath string // e.g. "<mod-name>/romfs/..."
	SHA             string
	Size            *int64
}
