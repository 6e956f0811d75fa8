// Package scraper keeps the fixture cache fresh from the club's calendar page.
//
// Fixtures are extracted through Firecrawl and only when the cache has gone
// stale. Multiple API credentials are tried in order: quota errors move on to
// the next credential straight away, other errors are retried a fixed number
// of times with a constant delay. When every credential fails the last cached
// fixtures are served, even if stale.
package scraper
