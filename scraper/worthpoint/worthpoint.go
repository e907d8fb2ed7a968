package worthpoint

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"lithos-pipeline/config"
	"lithos-pipeline/models"
	"lithos-pipeline/services"
	"lithos-pipeline/utils"
)

const (
	searchBase = "https://www.worthpoint.com/inventory/search"
	testURL    = "https://www.worthpoint.com/worthopedia"
	category   = "natural-history"
	pageSize   = 20
)

// Scraper collects sold-listing data from WorthPoint for every ruleset that
// carries search queries. Each material runs as one pool job with its own
// browser tab; a shared title set keeps overlapping queries from collecting
// the same listing twice within a run.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	rulesets []models.Ruleset
	pool     *utils.WorkerPool
	retry    *utils.RetryConfig
	seen     *utils.StringSet

	mu      sync.Mutex
	batches []*models.RawBatch
}

// New creates a ready-to-use WorthPoint Scraper.
func New(cfg *config.Config, logger *utils.Logger, rulesets []models.Ruleset) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		rulesets: rulesets,
		pool:     utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:     utils.NewStringSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape drives the full acquisition pass and returns one raw batch per
// material that produced listings.
func (s *Scraper) Scrape() ([]*models.RawBatch, error) {
	targets := make([]models.Ruleset, 0, len(s.rulesets))
	for _, rs := range s.rulesets {
		if len(rs.Queries) > 0 {
			targets = append(targets, rs)
		}
	}
	s.logger.Info("[worthpoint] Starting scrape: %d materials, %d pages max each",
		len(targets), s.cfg.MaxPages)

	chromeBin := findChromeBinary()
	s.logger.Info("[worthpoint] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	if err := s.verifySession(allocCtx); err != nil {
		return nil, fmt.Errorf("session check: %w", err)
	}
	s.logger.Info("[worthpoint] Session is valid")

	for _, rs := range targets {
		target := rs
		s.pool.Submit(func() {
			listings := s.scrapeMaterial(allocCtx, target)
			if len(listings) == 0 {
				s.logger.Warn("[worthpoint] %s: no listings collected", target.Name)
				return
			}

			s.mu.Lock()
			s.batches = append(s.batches, &models.RawBatch{Source: target.Name, Listings: listings})
			s.mu.Unlock()

			s.logger.Info("[worthpoint] %s: %d listings", target.Name, len(listings))
		})
	}
	s.pool.Wait()

	total := 0
	for _, b := range s.batches {
		total += len(b.Listings)
	}
	s.logger.Info("[worthpoint] Scrape complete: %d listings across %d materials",
		total, len(s.batches))
	return s.batches, nil
}

// verifySession sets the gc_session cookie and loads a known page to confirm
// we are signed in and not behind the bot challenge. Headless runs cannot
// solve the challenge, so hitting it is a hard error.
func (s *Scraper) verifySession(allocCtx context.Context) error {
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
	defer cancelTimeout()

	var body string
	err := chromedp.Run(ctx,
		setSessionCookie(s.cfg.SessionCookie),
		chromedp.Navigate(testURL),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`document.body.innerText`, &body),
	)
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	return classifyPage(body)
}

// scrapeMaterial pages through every query of one ruleset.
func (s *Scraper) scrapeMaterial(allocCtx context.Context, rs models.Ruleset) []*models.RawListing {
	var collected []*models.RawListing

	for _, query := range rs.Queries {
		s.logger.Info("[worthpoint] %s: searching %q", rs.Name, query)
		consecutiveEmpty := 0

		for offset := 0; offset < s.cfg.MaxPages*pageSize; offset += pageSize {
			cards, err := s.scrapePage(allocCtx, query, offset)
			if err != nil {
				s.logger.Error("[worthpoint] %s offset %d: %v", rs.Name, offset, err)
				break
			}

			if len(cards) == 0 {
				consecutiveEmpty++
				if consecutiveEmpty >= 2 {
					break
				}
				continue
			}
			consecutiveEmpty = 0

			newCount := 0
			now := time.Now()
			for _, c := range cards {
				if c.Title == "" || c.Price == "" {
					continue
				}
				if !s.seen.Add(services.Fingerprint(c.Title)) {
					continue
				}
				collected = append(collected, &models.RawListing{
					Title:     c.Title,
					PriceText: c.Price,
					DateText:  c.Date,
					ScrapedAt: now,
					Source:    rs.Name,
				})
				newCount++
			}
			s.logger.Debug("[worthpoint] %s offset %d: %d cards, %d new", rs.Name, offset, len(cards), newCount)

			// A short page means the result list is exhausted.
			if len(cards) < pageSize {
				break
			}

			time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
		}
	}

	return collected
}

type card struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Date  string `json:"date"`
}

// scrapePage loads one search-result page and extracts its listing cards.
func (s *Scraper) scrapePage(allocCtx context.Context, query string, offset int) ([]card, error) {
	var cards []card

	err := s.retry.Do(fmt.Sprintf("search-page-%d", offset), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		var body string
		var extracted []card

		err := chromedp.Run(ctx,
			setSessionCookie(s.cfg.SessionCookie),
			chromedp.Navigate(buildSearchURL(query, offset)),
			chromedp.Sleep(2*time.Second),

			// Scroll to trigger lazy loading of price/date elements.
			chromedp.Evaluate(`window.scrollTo(0, 500)`, nil),
			chromedp.Sleep(1*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
			chromedp.Sleep(1*time.Second),

			chromedp.Evaluate(`document.body.innerText`, &body),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var items = document.querySelectorAll(".search-result");

					for (var i = 0; i < items.length; i++) {
						var item = items[i];

						var title = "";
						var titleEl = item.querySelector(".item-link");
						if (titleEl) {
							var img = titleEl.querySelector("img");
							if (img && img.alt) {
								title = img.alt;
							} else {
								title = titleEl.innerText.trim();
							}
						}
						if (!title) {
							var lines = item.innerText.split(String.fromCharCode(10));
							for (var k = 0; k < lines.length; k++) {
								if (lines[k].trim().length > 5) {
									title = lines[k].trim();
									break;
								}
							}
						}

						var price = "";
						var priceEl = item.querySelector(".price .result");
						if (priceEl) {
							price = priceEl.innerText.trim();
						} else {
							var plines = item.innerText.split(String.fromCharCode(10));
							for (var j = 0; j < plines.length; j++) {
								if (plines[j].trim().charAt(0) === "$") {
									price = plines[j].trim();
									break;
								}
							}
						}

						var date = "";
						var dateEl = item.querySelector(".sold-date .result");
						if (dateEl) {
							date = dateEl.innerText.trim();
						} else {
							var months = ["Jan","Feb","Mar","Apr","May","Jun","Jul","Aug","Sep","Oct","Nov","Dec"];
							var dlines = item.innerText.split(String.fromCharCode(10));
							for (var m = 0; m < dlines.length && !date; m++) {
								var line = dlines[m].trim();
								if (line.length >= 10 && line.length <= 15) {
									for (var n = 0; n < months.length; n++) {
										if (line.indexOf(months[n]) === 0) {
											date = line;
											break;
										}
									}
								}
							}
						}

						if (title && price) {
							results.push({title: title, price: price, date: date});
						}
					}
					return results;
				})()
			`, &extracted),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}

		if err := classifyPage(body); err != nil {
			return err
		}

		cards = extracted
		return nil
	})

	return cards, err
}

// classifyPage inspects page text for the bot challenge and signed-out
// states that make further scraping pointless.
func classifyPage(body string) error {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "please verify you are a human") ||
		strings.Contains(lower, "access to this page has been denied") {
		return fmt.Errorf("bot challenge encountered, refresh the session from a real browser")
	}
	if strings.Contains(lower, "sign in") && !strings.Contains(lower, "my worthpoint") {
		return fmt.Errorf("session cookie expired or invalid")
	}
	return nil
}

// setSessionCookie installs the gc_session cookie before navigation.
func setSessionCookie(value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookie("gc_session", value).
			WithDomain(".worthpoint.com").
			WithPath("/").
			Do(ctx)
	})
}

// buildSearchURL composes a sold-listing search URL for one query page.
func buildSearchURL(query string, offset int) string {
	return fmt.Sprintf(
		"%s?offset=%d&max=%d&sort=SaleDate&query=%s&restrictTo=worldwide&img=true&noGreyList=true&saleDate=ALL_TIME&categories=%s",
		searchBase, offset, pageSize, url.QueryEscape(query), category)
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
