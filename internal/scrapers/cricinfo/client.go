// client.go fetches pages from the cricinfo stats site, what the pages mean
// is left to the innings package.

package cricinfo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	devenv "cricstats/dev/env"
	"cricstats/internal/components/assert"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/config"
	"cricstats/pkg/htmlutil"
	"cricstats/pkg/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_innings_page = "client.innings-page"
	report_client_player_name  = "client.player-name"
	report_client_roster       = "client.roster"
)

// PlayerID is the numeric id the site gives every player.
type PlayerID int64

func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnknownName is returned by PlayerName when the profile page is unavailable.
const UnknownName = "NULL"

// FetchError is returned when the site answers with a non-2xx status.
type FetchError struct {
	Url    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.Url, e.Status)
}

type Options struct {
	// StatsUrl and ProfileUrl are format strings taking the player id.
	StatsUrl         string
	ProfileUrl       string
	UserAgent        string
	Timeout          time.Duration
	BypassCloudflare bool
	// Output, if not nil, receives a dump of every http exchange.
	Output telemetry.Output
}

// OptionsFromConfig builds client options, creating the dump directory
// when one is configured.
func OptionsFromConfig(cfg config.Scraper) (Options, error) {
	opts := Options{
		StatsUrl:         cfg.StatsUrl,
		ProfileUrl:       cfg.ProfileUrl,
		UserAgent:        cfg.UserAgent,
		Timeout:          time.Duration(cfg.TimeoutSeconds) * time.Second,
		BypassCloudflare: cfg.BypassCloudflare,
	}
	if cfg.DumpDir == "" {
		return opts, nil
	}

	dir, err := devenv.ResolvePath(cfg.DumpDir)
	if err != nil {
		return Options{}, err
	}
	output, err := telemetry.NewFilesystemOutput(dir)
	if err != nil {
		return Options{}, fmt.Errorf("create dump dir: %w", err)
	}
	opts.Output = output
	return opts, nil
}

type Client struct {
	http *resty.Client
	opts Options
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.StatsUrl)
	assert.NotEmptyStr(opts.ProfileUrl)

	tel = telemetry.NewScopedAPI("cricinfo_scraper", tel)

	httpClient := resty.New()
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &Client{
		http: httpClient,
		opts: opts,
		tel:  tel,
	}
}

func (c *Client) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &FetchError{Url: url, Status: res.StatusCode()}
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// InningsPage fetches the batting-innings stats page of a player.
func (c *Client) InningsPage(ctx context.Context, id PlayerID) (*goquery.Document, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf(c.opts.StatsUrl, id))
	if err != nil {
		c.tel.ReportWarning(report_client_innings_page, id, err)
		return nil, fmt.Errorf("innings page of %d: %w", id, err)
	}
	return doc, nil
}

// PlayerName returns the display name on a player's profile page, or
// UnknownName if it cannot be fetched.
func (c *Client) PlayerName(ctx context.Context, id PlayerID) string {
	doc, err := c.fetch(ctx, fmt.Sprintf(c.opts.ProfileUrl, id))
	if err != nil {
		c.tel.ReportWarning(report_client_player_name, id, err)
		return UnknownName
	}

	name := NameFromTitle(doc.Find("title").First().Text())
	if name == "" {
		c.tel.ReportWarning(report_client_player_name, id, "empty title")
		return UnknownName
	}
	return name
}

var titleSeparator = regexp.MustCompile(`[-|]`)

// NameFromTitle takes the part of a profile page title before the first
// separator, with apostrophes removed.
func NameFromTitle(title string) string {
	name := titleSeparator.Split(title, 2)[0]
	name = textutil.StripApostrophes(name)
	return htmlutil.CleanText(name)
}

// Roster fetches a roster page and returns the ids of the players it links to.
func (c *Client) Roster(ctx context.Context, rosterUrl string) ([]PlayerID, error) {
	base, err := url.Parse(rosterUrl)
	if err != nil {
		return nil, err
	}
	doc, err := c.fetch(ctx, rosterUrl)
	if err != nil {
		c.tel.ReportBroken(report_client_roster, err)
		return nil, fmt.Errorf("roster: %w", err)
	}

	ids := ParseRoster(base, doc)
	c.tel.ReportCount(report_client_roster, int64(len(ids)))
	return ids, nil
}

var playerHref = regexp.MustCompile(`/player/(\d+)\.html$`)

// ParseRoster collects the ids of every player page linked from the
// document, each once, in the order they first appear.
func ParseRoster(base *url.URL, doc *goquery.Document) []PlayerID {
	seen := map[PlayerID]struct{}{}
	var ids []PlayerID
	for _, anchor := range htmlutil.GetAnchors(base, doc.Find("a")) {
		groups := playerHref.FindStringSubmatch(anchor.Url.Path)
		if len(groups) < 2 {
			continue
		}
		n, err := strconv.ParseInt(groups[1], 10, 64)
		if err != nil {
			continue
		}
		id := PlayerID(n)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
