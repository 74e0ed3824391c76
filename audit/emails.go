package audit

import (
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/miekg/dns"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// imageSuffixes catches filenames the email regex mistakes for addresses,
// like "logo@2x.png".
var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// ExtractEmails harvests contact emails from a rendered document: mailto
// links first, then a regex sweep over the raw markup. The result is deduped
// and keeps first-seen order.
func ExtractEmails(doc *goquery.Document, markup string) []string {
	seen := make(map[string]struct{})
	var emails []string

	add := func(candidate string) {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			return
		}
		for _, suffix := range imageSuffixes {
			if strings.HasSuffix(candidate, suffix) {
				return
			}
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		emails = append(emails, candidate)
	}

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexAny(addr, "?&"); i >= 0 {
			addr = addr[:i]
		}
		if emailRe.MatchString(addr) {
			add(addr)
		}
	})

	for _, m := range emailRe.FindAllString(markup, -1) {
		add(m)
	}
	return emails
}

var mxResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// hasMXRecord checks whether the domain publishes at least one MX record,
// trying each resolver in turn.
func hasMXRecord(domain string) bool {
	client := &dns.Client{Timeout: 5 * time.Second}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

	for _, resolver := range mxResolvers {
		resp, _, err := client.Exchange(msg, resolver)
		if err != nil {
			continue
		}
		for _, answer := range resp.Answer {
			if _, ok := answer.(*dns.MX); ok {
				return true
			}
		}
		// Authoritative empty answer: no need to ask the next resolver.
		if resp.Rcode == dns.RcodeSuccess {
			return false
		}
	}
	// Resolver trouble is not the domain's fault.
	if _, err := net.LookupMX(domain); err == nil {
		return true
	}
	return false
}
