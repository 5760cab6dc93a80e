package model

import "slices"

// JobCategory groups the subcategories offered by the search form.
type JobCategory struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// SearchOptions is the catalogue the search form is built from.
type SearchOptions struct {
	Categories          []JobCategory `json:"categories"`
	Levels              []string      `json:"levels"`
	Industries          []string      `json:"industries"`
	DeliveryTimes       []string      `json:"deliveryTimes"`
	SearchSources       []string      `json:"searchSources"`
	Locations           []string      `json:"locations"`
	CommunityCategories []string      `json:"communityCategories"`
}

var jobCategories = []JobCategory{
	{Name: "Any Category", Subcategories: []string{"Any Skill"}},
	{Name: "Websites, IT & Software", Subcategories: []string{
		"Any Skill", "Software Development", "Website Development", "Mobile App Development",
		"Game Development", "WordPress", "E-Commerce", "UI/UX Design", "Quality Assurance", "DevOps",
		"Cybersecurity", "IT Support", "Database Administration", "Blockchain", "Artificial Intelligence",
	}},
	{Name: "Design, Media & Architecture", Subcategories: []string{
		"Any Skill", "Graphic Design", "Logo Design", "Illustration", "Video Editing", "Animation",
		"Presentation Design", "Architectural Design", "Interior Design", "Fashion Design",
		"Photography", "Videography", "3D Modeling", "Branding",
	}},
	{Name: "Writing & Content", Subcategories: []string{
		"Any Skill", "Content Writing", "Copywriting", "Technical Writing", "Creative Writing",
		"Editing & Proofreading", "Resume Writing", "Translation", "Ghostwriting", "SEO Writing",
		"Blog Writing", "Grant Writing", "Scriptwriting",
	}},
	{Name: "Data Entry & Admin", Subcategories: []string{
		"Any Skill", "Data Entry", "Virtual Assistant", "Web Research", "Customer Support",
		"Project Management", "Transcription", "Data Processing", "Excel", "Order Processing",
		"Email Handling",
	}},
	{Name: "Sales & Marketing", Subcategories: []string{
		"Any Skill", "Social Media Marketing", "SEO", "Email Marketing", "Content Marketing",
		"Lead Generation", "Sales", "Telemarketing", "Public Relations", "Affiliate Marketing",
		"Market Research", "Marketing Strategy", "Google Ads",
	}},
	{Name: "Engineering & Science", Subcategories: []string{
		"Any Skill", "Mechanical Engineering", "Electrical Engineering", "Civil Engineering",
		"Chemical Engineering", "Data Science", "Machine Learning", "Product Design", "CAD",
		"Scientific Research", "Mathematics", "Biology",
	}},
	{Name: "Business, Accounting & Legal", Subcategories: []string{
		"Any Skill", "Accounting", "Financial Planning", "Business Analysis", "Human Resources",
		"Management Consulting", "Legal Services", "Recruiting", "Bookkeeping", "Startup Consulting",
		"Intellectual Property",
	}},
	{Name: "Translation & Languages", Subcategories: []string{
		"Any Skill", "English", "Spanish", "French", "German", "Chinese (Simplified)", "Japanese",
		"Russian", "Arabic", "Portuguese", "Italian", "Korean", "Hindi",
	}},
}

var levelOptions = []string{
	"Any Level",
	"Entry-Level / Junior",
	"Intermediate / Mid-Level",
	"Expert / Senior",
}

var industryOptions = []string{
	"Any Industry", "Technology & SaaS", "Healthcare & Wellness", "Finance & FinTech",
	"Entertainment & Media", "E-commerce & Retail", "Education & E-Learning", "Gaming",
	"Real Estate", "Travel & Hospitality", "Non-profit", "Fashion & Apparel", "Automotive",
	"Marketing & Advertising", "Food & Beverage",
}

var deliveryTimeOptions = []string{
	"Any Timeframe",
	"Urgent (Within 24 hours)",
	"Short-term (Within a week)",
	"Standard (Within a month)",
	"Long-term (Ongoing)",
	"Flexible",
}

var searchSourceOptions = []string{
	"Broad Search (Entire Web)",
	"Social Media (X, LinkedIn, FB Groups)",
	"Freelancer Sites (Upwork, etc.)",
	"Niche Communities (Reddit, etc.)",
	"Company Careers Pages",
}

var locationOptions = []string{
	"United States", "Canada", "United Kingdom", "Germany", "France", "Australia", "India",
	"Global / Remote",
}

var communityCategories = []string{
	"General Discussion",
	"Winning Proposals",
	"Client Management",
	"Tooling & Tech",
	"Success Stories",
}

// Options returns a copy of the search form catalogue.
func Options() SearchOptions {
	cats := make([]JobCategory, len(jobCategories))
	for i, c := range jobCategories {
		cats[i] = JobCategory{Name: c.Name, Subcategories: slices.Clone(c.Subcategories)}
	}
	return SearchOptions{
		Categories:          cats,
		Levels:              slices.Clone(levelOptions),
		Industries:          slices.Clone(industryOptions),
		DeliveryTimes:       slices.Clone(deliveryTimeOptions),
		SearchSources:       slices.Clone(searchSourceOptions),
		Locations:           slices.Clone(locationOptions),
		CommunityCategories: slices.Clone(communityCategories),
	}
}

func IsLevel(s string) bool        { return slices.Contains(levelOptions, s) }
func IsIndustry(s string) bool     { return slices.Contains(industryOptions, s) }
func IsDeliveryTime(s string) bool { return slices.Contains(deliveryTimeOptions, s) }
func IsSearchSource(s string) bool { return slices.Contains(searchSourceOptions, s) }

// IsCommunityCategory reports whether s is a forum category.
func IsCommunityCategory(s string) bool {
	return slices.Contains(communityCategories, s)
}
