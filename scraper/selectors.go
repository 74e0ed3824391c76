package scraper

import "fmt"

// Selectors used against the map listings UI.
// Centralising them makes future updates trivial.
const (
	// Results feed
	FeedSelector      = `div[role="feed"]`
	FeedReadySelector = `div[role="feed"], div[aria-label^="Results"], a[href*="/maps/place/"]`
	PlaceLinkSelector = `a[href*="/maps/place/"]`

	// Detail panel
	PanelHeadingSelector = `h1`

	// Contact controls
	WebsiteAuthoritySelector = `a[data-item-id="authority"]`
	WebsiteFallbackSelector  = `a[aria-label*="website"], a[aria-label*="Website"]`
	PhoneSelector            = `button[data-item-id^="phone:tel:"], a[href^="tel:"]`
	AddressSelector          = `button[data-item-id="address"]`

	// Reviews
	RatingStarSelector    = `span[role="img"][aria-label*="star"]`
	RatingButtonSelector  = `button[aria-label*="rating"]`
	RatingAnySelector     = `[aria-label*="rating"]`
	ReviewsButtonSelector = `button[aria-label*="review"]`
	ReviewsLinkSelector   = `a[aria-label*="review"]`
)

// ConsentSelectors are tried in order to dismiss the cookie dialog before the
// feed is read.
var ConsentSelectors = []string{
	`button[aria-label="Accept all"]`,
	`button[aria-label="I agree"]`,
	`button[aria-label="Alles akzeptieren"]`,
	`button.VfPpkd-LgbsSe-OWXEXe-k8QpJ`,
}

// StarBucketSelectors returns the selector variants tried for one star value.
func StarBucketSelectors(stars int) []string {
	return []string{
		fmt.Sprintf(`button[aria-label*="%d star"]`, stars),
		fmt.Sprintf(`[aria-label*="%d star"]`, stars),
		fmt.Sprintf(`[aria-label*="%d★"]`, stars),
	}
}
