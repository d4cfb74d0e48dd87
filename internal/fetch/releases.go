package fetch

import (
	"context"
	"encoding/json"
	gherrors "errors"
	"net/url"

	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/countrystatecity/docsync/internal/changelog"
	"github.com/countrystatecity/docsync/internal/errors"
)

// RepositoriesService is the slice of the GitHub API the release lister needs.
type RepositoriesService interface {
	ListReleases(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error)
}

// ReleaseLister fetches the full (paginated) release list of one repository.
type ReleaseLister struct {
	repos RepositoriesService
	owner string
	repo  string
}

// NewReleaseLister creates a lister authenticated with the given token.
func NewReleaseLister(owner, repo, token string) *ReleaseLister {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(httpClient)
	return &ReleaseLister{
		repos: client.Repositories,
		owner: owner,
		repo:  repo,
	}
}

// NewReleaseListerWithService injects a RepositoriesService directly (tests).
func NewReleaseListerWithService(repos RepositoriesService, owner, repo string) *ReleaseLister {
	return &ReleaseLister{repos: repos, owner: owner, repo: repo}
}

// List returns all releases in API order (newest first), walking every page.
func (l *ReleaseLister) List(ctx context.Context) ([]changelog.Release, error) {
	var out []changelog.Release
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := l.repos.ListReleases(ctx, l.owner, l.repo, opts)
		if err != nil {
			return nil, l.classifyError(err)
		}
		for _, r := range page {
			out = append(out, changelog.Release{
				TagName:     r.GetTagName(),
				PublishedAt: r.GetPublishedAt().Time,
				Body:        r.GetBody(),
				Prerelease:  r.GetPrerelease(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

func (l *ReleaseLister) classifyError(err error) error {
	var ghErr *github.ErrorResponse
	if gherrors.As(err, &ghErr) && ghErr.Response != nil {
		reqURL := ""
		if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
			reqURL = ghErr.Response.Request.URL.String()
		}
		return errors.HTTPStatus(reqURL, ghErr.Response.StatusCode, ghErr.Message)
	}

	var jsonErr *json.SyntaxError
	if gherrors.As(err, &jsonErr) {
		return errors.ParseFailed("release listing", err)
	}

	apiURL := "https://api.github.com/repos/" + url.PathEscape(l.owner) + "/" + url.PathEscape(l.repo) + "/releases"
	return errors.NetworkFailed(apiURL, err)
}
