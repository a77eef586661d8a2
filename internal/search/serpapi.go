package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	appErr "github.com/AMV0027/gcn-final/internal/pkg/errors"
)

const defaultSerpAPIURL = "https://serpapi.com/search.json"

var videoIDPattern = regexp.MustCompile(`v=([\w-]+)`)

type serpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func (s *serpAPIProvider) Name() string {
	return "serpapi"
}

type serpImagesResponse struct {
	Error  string `json:"error"`
	Images []struct {
		Original string `json:"original"`
	} `json:"images_results"`
}

func (s *serpAPIProvider) Images(ctx context.Context, phrase string, max int) ([]string, error) {
	params := url.Values{}
	params.Set("engine", "google_images")
	params.Set("q", phrase)
	params.Set("tbm", "isch")
	params.Set("num", strconv.Itoa(max))
	var out serpImagesResponse
	if err := s.get(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", out.Error)
	}
	res := make([]string, 0, max)
	for i, img := range out.Images {
		if i >= max {
			break
		}
		if img.Original != "" {
			res = append(res, img.Original)
		}
	}
	return res, nil
}

type serpVideosResponse struct {
	Error  string `json:"error"`
	Videos []struct {
		Link string `json:"link"`
	} `json:"video_results"`
}

// Videos returns YouTube video ids, not URLs.
func (s *serpAPIProvider) Videos(ctx context.Context, phrase string, max int) ([]string, error) {
	params := url.Values{}
	params.Set("engine", "youtube")
	params.Set("search_query", phrase)
	var out serpVideosResponse
	if err := s.get(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", out.Error)
	}
	res := make([]string, 0, max)
	for i, v := range out.Videos {
		if i >= max {
			break
		}
		if id := VideoID(v.Link); id != "" {
			res = append(res, id)
		}
	}
	return res, nil
}

type serpOrganicResponse struct {
	Error   string `json:"error"`
	Organic []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

func (s *serpAPIProvider) Links(ctx context.Context, phrase string, max int) ([]string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", phrase)
	var out serpOrganicResponse
	if err := s.get(ctx, params, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", out.Error)
	}
	res := make([]string, 0, max)
	for i, r := range out.Organic {
		if i >= max {
			break
		}
		if r.Link != "" {
			res = append(res, r.Link)
		}
	}
	return res, nil
}

func (s *serpAPIProvider) get(ctx context.Context, params url.Values, dst interface{}) error {
	if s.apiKey == "" {
		return fmt.Errorf("serpapi key not configured: %w", appErr.ErrUnavailable)
	}
	params.Set("api_key", s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("serpapi request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// VideoID extracts the id from a YouTube watch URL, or "" when absent.
func VideoID(link string) string {
	m := videoIDPattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func init() {
	Register("serpapi", func(args ProviderArgs) (Provider, error) {
		baseURL := strings.TrimSpace(args.BaseURL)
		if baseURL == "" {
			baseURL = defaultSerpAPIURL
		}
		return &serpAPIProvider{
			apiKey:  strings.TrimSpace(args.APIKey),
			baseURL: baseURL,
			client:  args.Client,
		}, nil
	})
}
