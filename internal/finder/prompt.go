package finder

import (
	"fmt"
	"strings"

	"github.com/sakif/frelance/internal/model"
)

const jobSchema = `Respond with a JSON array only. Each element is an object with the fields:
id (string), title, company, summary, fullDescription (strings), skills (array of strings),
payRange (e.g. "$40-$60/hr"), jobType, postedDate (YYYY-MM-DD), sourceUrl, sourceName,
matchPercentage (integer 0-100, how well the job fits the freelancer),
companyRating (string, optional), companyLogoUrl (string, optional),
payEstimate (string, optional), redFlags (array of strings, optional).`

// buildPrompt renders the search request. Criteria left at their "Any ..."
// defaults are omitted so the model does not treat them as constraints.
func buildPrompt(c model.SearchCriteria, p model.UserProfile) string {
	var b strings.Builder
	b.WriteString("Find up to 25 current freelance job listings that match this search.\n")

	field := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" || strings.HasPrefix(value, "Any ") {
			return
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	field("Keywords", c.Query)
	field("Category", c.Category)
	field("Skill", c.Subcategory)
	field("Experience level", c.Level)
	field("Industry", c.Industry)
	field("Delivery time", c.DeliveryTime)
	field("Where to look", c.SearchSource)

	if p.Complete() {
		b.WriteString("\nScore matchPercentage against this freelancer:\n")
		field("Headline", p.Headline)
		if len(p.Skills) > 0 {
			field("Skills", strings.Join(p.Skills, ", "))
		}
		if p.Rate > 0 {
			field("Hourly rate", fmt.Sprintf("$%.0f", p.Rate))
		}
	}

	b.WriteString("\n")
	b.WriteString(jobSchema)
	return b.String()
}
