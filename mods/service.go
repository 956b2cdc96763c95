package mods

import (
	"context"
	"fmt"

	"switch-mod-downloader/github"

	"go.uber.org/zap"
)

// ListingSource provides the remote file tree and raw URLs for its paths.
type ListingSource interface {
	FetchTree(ctx context.Context, repo, branch string) (*github.Tree, error)
	RawURL(repo, branch, path string) string
}

// Environment exposes the local emulator installation.
type Environment interface {
	LoadDirectory() (string, error)
	TitleIDs(loadDir string) ([]string, error)
	TitleVersion(titleID string) (version string, ok bool, err error)
}

// Service runs the fetch+match pipeline and the download phase.
type Service struct {
	Repository string
	Branch     string
	Source     ListingSource
	Env        Environment
	Downloader *Downloader

	log *zap.SugaredLogger
}

func NewService(repository, branch string, source ListingSource, env Environment, downloader *Downloader, log *zap.SugaredLogger) *Service {
	return &Service{
		Repository: repository,
		Branch:     branch,
		Source:     source,
		Env:        env,
		Downloader: downloader,
		log:        log.With(zap.String("repository", repository)),
	}
}

// ReadGameTitles returns every installed title that appears in the repository,
// including titles for which no file fits the installed version.
func (s *Service) ReadGameTitles(ctx context.Context) ([]Game, MatchStats, error) {
	loadDir, err := s.Env.LoadDirectory()
	if err != nil {
		return nil, MatchStats{}, err
	}

	titleIDs, err := s.Env.TitleIDs(loadDir)
	if err != nil {
		return nil, MatchStats{}, err
	}
	s.log.Infow("Found installed titles", zap.String("load_directory", loadDir), zap.Int("count", len(titleIDs)))
	if len(titleIDs) == 0 {
		return nil, MatchStats{}, nil
	}

	tree, err := s.Source.FetchTree(ctx, s.Repository, s.Branch)
	if err != nil {
		return nil, MatchStats{}, fmt.Errorf("fetch listing: %w", err)
	}
	if tree.Truncated {
		s.log.Warnw("Repository listing is truncated, some mods may be missing", zap.Int("entries", len(tree.Tree)))
	}

	urlFor := func(path string) string {
		return s.Source.RawURL(s.Repository, s.Branch, path)
	}
	matcher := NewMatcher(urlFor, s.Env.TitleVersion, loadDir, s.log)
	games, stats := matcher.Match(EntriesFromTree(tree), titleIDs)
	return games, stats, nil
}

// DownloadMods downloads every entry of games.
func (s *Service) DownloadMods(ctx context.Context, games []Game) (Report, error) {
	return s.Downloader.DownloadAll(ctx, games)
}
