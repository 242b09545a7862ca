package tunnel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const userAgent = "reconkit/1.0"

// Asset is one downloadable file attached to a GitHub release.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

// minAssetScore is the confidence floor: below it no asset clearly
// matches the platform and installation aborts rather than guessing.
const minAssetScore = 4

// LatestAssets fetches the asset list of a repo's latest release.
func LatestAssets(ctx context.Context, client *http.Client, repo string) ([]Asset, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release for %s: %w", repo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching latest release for %s: status %s", repo, resp.Status)
	}

	var release struct {
		Assets []Asset `json:"assets"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release for %s: %w", repo, err)
	}

	assets := release.Assets[:0]
	for _, a := range release.Assets {
		if a.Name != "" && a.URL != "" {
			assets = append(assets, a)
		}
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("no downloadable assets in latest release for %s", repo)
	}
	return assets, nil
}

// ScoreAsset rates how well an asset name matches the platform. OS and
// arch keywords weigh most, then provider name hints, then archive
// extensions; checksum and signature files are pushed below the floor.
func ScoreAsset(name string, p Platform, hints []string) int {
	name = strings.ToLower(name)
	score := 0
	if containsAny(name, osKeywords(p.OS)) {
		score += 4
	}
	if containsAny(name, archKeywords(p.Arch)) {
		score += 4
	}
	if containsAny(name, hints) {
		score += 3
	}
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".zip"):
		score += 2
	case strings.HasSuffix(name, ".gz"), strings.HasSuffix(name, ".exe"):
		score++
	}
	if strings.Contains(name, "sha") || strings.Contains(name, "checksum") ||
		strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".sig") {
		score -= 10
	}
	return score
}

// SelectAsset picks the best-scoring asset, refusing to guess when
// nothing reaches the confidence floor.
func SelectAsset(assets []Asset, p Platform, hints []string) (Asset, error) {
	best, bestScore := Asset{}, -1<<31
	for _, a := range assets {
		if s := ScoreAsset(a.Name, p, hints); s > bestScore {
			best, bestScore = a, s
		}
	}
	if bestScore < minAssetScore {
		names := make([]string, 0, len(assets))
		for _, a := range assets {
			names = append(names, a.Name)
		}
		sort.Strings(names)
		if len(names) > 8 {
			names = names[:8]
		}
		return Asset{}, fmt.Errorf("could not confidently select a release asset for %s/%s; seen: %s",
			p.OS, p.Arch, strings.Join(names, ", "))
	}
	return best, nil
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
