// Package customization holds the canned website customization suggestions
// and the paid add-ons surfaced alongside them.
package customization

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups suggestions
type Category string

const (
	CategoryLayout  Category = "layout"
	CategoryColor   Category = "color"
	CategoryContent Category = "content"
	CategoryFeature Category = "feature"
)

// UpsellFeature is a paid add-on
type UpsellFeature struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Keywords     []string        `json:"-"`
}

// Suggestion is one canned customization idea
type Suggestion struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	UpsellID    string   `json:"upsell_id,omitempty"`
}

var upsells = []UpsellFeature{
	{
		ID:           "custom-domain",
		Name:         "Custom domain",
		Description:  "Serve your generated site from your own domain with managed TLS.",
		MonthlyPrice: decimal.RequireFromString("5.00"),
		Keywords:     []string{"domain", "dns", "url", "ssl", "https"},
	},
	{
		ID:           "analytics",
		Name:         "Visitor analytics",
		Description:  "Privacy-friendly traffic, conversion and referrer dashboards.",
		MonthlyPrice: decimal.RequireFromString("9.00"),
		Keywords:     []string{"analytics", "traffic", "visitors", "stats", "conversion"},
	},
	{
		ID:           "ecommerce",
		Name:         "Storefront",
		Description:  "Product catalog, cart and Stripe checkout for your site.",
		MonthlyPrice: decimal.RequireFromString("19.00"),
		Keywords:     []string{"shop", "store", "cart", "sell", "ecommerce", "payment", "checkout"},
	},
	{
		ID:           "seo-boost",
		Name:         "SEO boost",
		Description:  "Generated meta tags, sitemaps and structured data.",
		MonthlyPrice: decimal.RequireFromString("7.00"),
		Keywords:     []string{"seo", "google", "search", "ranking", "sitemap"},
	},
	{
		ID:           "priority-ai",
		Name:         "Priority AI",
		Description:  "Faster models and higher generation limits.",
		MonthlyPrice: decimal.RequireFromString("15.00"),
		Keywords:     []string{"faster", "limit", "quota", "priority", "gpt", "claude"},
	},
}

var suggestions = []Suggestion{
	{ID: "layout-hero-split", Category: CategoryLayout, Title: "Split hero section", Description: "Put the headline on the left and a product shot on the right to shorten time to value."},
	{ID: "layout-sticky-nav", Category: CategoryLayout, Title: "Sticky navigation", Description: "Keep the primary navigation visible while scrolling long pages."},
	{ID: "layout-card-grid", Category: CategoryLayout, Title: "Card grid for services", Description: "Present offerings as a responsive three-column card grid."},
	{ID: "layout-footer-cta", Category: CategoryLayout, Title: "Footer call to action", Description: "Repeat the main call to action above the footer."},
	{ID: "color-high-contrast", Category: CategoryColor, Title: "Higher contrast palette", Description: "Darken body text and raise button contrast to meet WCAG AA."},
	{ID: "color-brand-accent", Category: CategoryColor, Title: "Single brand accent", Description: "Use one accent color for every interactive element."},
	{ID: "color-dark-mode", Category: CategoryColor, Title: "Dark mode", Description: "Offer a dark scheme that follows the visitor's system preference."},
	{ID: "content-testimonials", Category: CategoryContent, Title: "Customer testimonials", Description: "Add three short quotes with names and photos near the pricing section."},
	{ID: "content-faq", Category: CategoryContent, Title: "FAQ section", Description: "Answer the five most common pre-sales questions."},
	{ID: "content-benefit-headline", Category: CategoryContent, Title: "Benefit-led headline", Description: "Rewrite the headline around the outcome customers get."},
	{ID: "feature-contact-form", Category: CategoryFeature, Title: "Contact form", Description: "Collect leads with a short validated form."},
	{ID: "feature-newsletter", Category: CategoryFeature, Title: "Newsletter signup", Description: "Capture emails with a single-field signup."},
	{ID: "feature-custom-domain", Category: CategoryFeature, Title: "Use your own domain", Description: "Point your domain at the site.", UpsellID: "custom-domain"},
	{ID: "feature-analytics", Category: CategoryFeature, Title: "Track visitors", Description: "See where visitors come from and what converts.", UpsellID: "analytics"},
	{ID: "feature-storefront", Category: CategoryFeature, Title: "Sell online", Description: "Turn the site into a small store.", UpsellID: "ecommerce"},
	{ID: "feature-seo", Category: CategoryFeature, Title: "Rank higher", Description: "Generate structured data and a sitemap.", UpsellID: "seo-boost"},
}

// Suggestions returns a copy of every suggestion
func Suggestions() []Suggestion {
	out := make([]Suggestion, len(suggestions))
	copy(out, suggestions)
	return out
}

// Upsells returns a copy of every upsell feature
func Upsells() []UpsellFeature {
	out := make([]UpsellFeature, len(upsells))
	copy(out, upsells)
	return out
}

// LookupUpsell finds an upsell by id
func LookupUpsell(id string) (UpsellFeature, bool) {
	for _, u := range upsells {
		if u.ID == id {
			return u, true
		}
	}
	return UpsellFeature{}, false
}

// MatchUpsells returns the upsells whose keywords appear in text, in catalog order
func MatchUpsells(text string) []UpsellFeature {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}

	var out []UpsellFeature
	for _, u := range upsells {
		for _, k := range u.Keywords {
			if _, ok := seen[k]; ok {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
