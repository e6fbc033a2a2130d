package llm

import (
	"encoding/json"
	"strings"

	apperrors "logo-engine/internal/common/errors"
)

// Closed industry categories.
const (
	IndustryTechnology   = "technology"
	IndustryHealthcare   = "healthcare"
	IndustryFinance      = "finance"
	IndustryEducation    = "education"
	IndustryRetail       = "retail"
	IndustryFoodBeverage = "food_beverage"
	IndustryRealEstate   = "real_estate"
	IndustryFitness      = "fitness"
	IndustryBeauty       = "beauty"
	IndustryAutomotive   = "automotive"
	IndustryTravel       = "travel"
	IndustryEntertain    = "entertainment"
	IndustryConstruction = "construction"
	IndustryLegal        = "legal"
	IndustryMarketing    = "marketing"
	IndustryConsulting   = "consulting"
	IndustryNonprofit    = "nonprofit"
	IndustryOther        = "other"
)

// Closed business type categories.
const (
	BusinessTypeSmallBusiness = "small_business"
	BusinessTypeStartup       = "startup"
	BusinessTypeEnterprise    = "enterprise"
	BusinessTypeFreelance     = "freelance"
	BusinessTypeEcommerce     = "ecommerce"
	BusinessTypeNonprofit     = "nonprofit"
	BusinessTypeFranchise     = "franchise"
	BusinessTypeAgency        = "agency"
)

// industrySynonyms maps normalized keys to industry categories. Many-to-one
// and case/separator-insensitive via normalizeKey. Unmatched inputs fall
// back to "other", never get rejected.
var industrySynonyms = map[string]string{
	"technology": IndustryTechnology, "tech": IndustryTechnology,
	"software": IndustryTechnology, "softwaredevelopment": IndustryTechnology,
	"softwareengineering": IndustryTechnology, "it": IndustryTechnology,
	"informationtechnology": IndustryTechnology, "saas": IndustryTechnology,
	"webdevelopment": IndustryTechnology, "appdevelopment": IndustryTechnology,
	"ai": IndustryTechnology, "artificialintelligence": IndustryTechnology,
	"cybersecurity": IndustryTechnology, "hardware": IndustryTechnology,

	"healthcare": IndustryHealthcare, "health": IndustryHealthcare,
	"medical": IndustryHealthcare, "medicine": IndustryHealthcare,
	"dental": IndustryHealthcare, "pharmacy": IndustryHealthcare,
	"wellness": IndustryHealthcare, "clinic": IndustryHealthcare,
	"hospital": IndustryHealthcare, "veterinary": IndustryHealthcare,

	"finance": IndustryFinance, "financial": IndustryFinance,
	"fintech": IndustryFinance, "banking": IndustryFinance,
	"insurance": IndustryFinance, "accounting": IndustryFinance,
	"investment": IndustryFinance, "crypto": IndustryFinance,
	"cryptocurrency": IndustryFinance,

	"education": IndustryEducation, "school": IndustryEducation,
	"training": IndustryEducation, "tutoring": IndustryEducation,
	"elearning": IndustryEducation, "university": IndustryEducation,

	"retail": IndustryRetail, "shop": IndustryRetail,
	"store": IndustryRetail, "boutique": IndustryRetail,
	"ecommerce": IndustryRetail, "onlinestore": IndustryRetail,

	"foodbeverage": IndustryFoodBeverage, "food": IndustryFoodBeverage,
	"restaurant": IndustryFoodBeverage, "cafe": IndustryFoodBeverage,
	"coffee": IndustryFoodBeverage, "coffeeshop": IndustryFoodBeverage,
	"bakery": IndustryFoodBeverage, "catering": IndustryFoodBeverage,
	"bar": IndustryFoodBeverage, "brewery": IndustryFoodBeverage,
	"foodtruck": IndustryFoodBeverage, "beverages": IndustryFoodBeverage,

	"realestate": IndustryRealEstate, "property": IndustryRealEstate,
	"realty": IndustryRealEstate, "propertymanagement": IndustryRealEstate,

	"fitness": IndustryFitness, "gym": IndustryFitness,
	"sports": IndustryFitness, "yoga": IndustryFitness,
	"personaltraining": IndustryFitness,

	"beauty": IndustryBeauty, "salon": IndustryBeauty,
	"cosmetics": IndustryBeauty, "spa": IndustryBeauty,
	"barbershop": IndustryBeauty, "skincare": IndustryBeauty,

	"automotive": IndustryAutomotive, "auto": IndustryAutomotive,
	"cars": IndustryAutomotive, "carrepair": IndustryAutomotive,
	"mechanic": IndustryAutomotive, "dealership": IndustryAutomotive,

	"travel": IndustryTravel, "tourism": IndustryTravel,
	"hospitality": IndustryTravel, "hotel": IndustryTravel,

	"entertainment": IndustryEntertain, "media": IndustryEntertain,
	"music": IndustryEntertain, "gaming": IndustryEntertain,
	"games": IndustryEntertain, "film": IndustryEntertain,
	"photography": IndustryEntertain,

	"construction": IndustryConstruction, "building": IndustryConstruction,
	"contracting": IndustryConstruction, "architecture": IndustryConstruction,

	"legal": IndustryLegal, "law": IndustryLegal,
	"lawfirm": IndustryLegal, "attorney": IndustryLegal,

	"marketing": IndustryMarketing, "advertising": IndustryMarketing,
	"branding": IndustryMarketing, "design": IndustryMarketing,
	"creative": IndustryMarketing, "pr": IndustryMarketing,

	"consulting": IndustryConsulting, "consultancy": IndustryConsulting,
	"coaching": IndustryConsulting, "advisory": IndustryConsulting,
	"professionalservices": IndustryConsulting,

	"nonprofit": IndustryNonprofit, "charity": IndustryNonprofit,
	"ngo": IndustryNonprofit, "foundation": IndustryNonprofit,

	"other": IndustryOther,
}

// businessTypeSynonyms follows the same pattern, but unmatched inputs fall
// back to small_business rather than "other". The asymmetry with industry
// is deliberate and load-bearing for downstream prompt construction.
var businessTypeSynonyms = map[string]string{
	"smallbusiness": BusinessTypeSmallBusiness, "smallcompany": BusinessTypeSmallBusiness,
	"smb": BusinessTypeSmallBusiness, "sme": BusinessTypeSmallBusiness,
	"localbusiness": BusinessTypeSmallBusiness, "familybusiness": BusinessTypeSmallBusiness,
	"soleproprietorship": BusinessTypeSmallBusiness,

	"startup": BusinessTypeStartup, "newventure": BusinessTypeStartup,
	"techstartup": BusinessTypeStartup,

	"enterprise": BusinessTypeEnterprise, "corporation": BusinessTypeEnterprise,
	"corporate": BusinessTypeEnterprise, "largecompany": BusinessTypeEnterprise,
	"multinational": BusinessTypeEnterprise,

	"freelance": BusinessTypeFreelance, "freelancer": BusinessTypeFreelance,
	"independent": BusinessTypeFreelance, "solopreneur": BusinessTypeFreelance,
	"selfemployed": BusinessTypeFreelance, "contractor": BusinessTypeFreelance,

	"ecommerce": BusinessTypeEcommerce, "onlinestore": BusinessTypeEcommerce,
	"onlinebusiness": BusinessTypeEcommerce, "onlineshop": BusinessTypeEcommerce,

	"nonprofit": BusinessTypeNonprofit, "charity": BusinessTypeNonprofit,
	"ngo": BusinessTypeNonprofit,

	"franchise": BusinessTypeFranchise,

	"agency": BusinessTypeAgency, "studio": BusinessTypeAgency,
}

// styleEnum is the closed set of accepted style preferences. Unknown style
// strings are silently dropped, not defaulted.
var styleEnum = map[string]bool{
	"modern":       true,
	"minimalist":   true,
	"vintage":      true,
	"classic":      true,
	"playful":      true,
	"bold":         true,
	"elegant":      true,
	"professional": true,
	"creative":     true,
	"abstract":     true,
	"geometric":    true,
	"mascot":       true,
	"wordmark":     true,
	"emblem":       true,
}

// Confidence weights. The three required fields carry 80 of the 100
// attainable points.
var confidenceWeights = []struct {
	weight  float64
	present func(*BusinessInformation) bool
}{
	{30, func(b *BusinessInformation) bool { return b.CompanyName != "" }},
	{25, func(b *BusinessInformation) bool { return b.Industry != "" }},
	{25, func(b *BusinessInformation) bool { return b.BusinessType != "" }},
	{5, func(b *BusinessInformation) bool { return b.TargetAudience != "" }},
	{5, func(b *BusinessInformation) bool { return len(b.BrandPersonality) > 0 }},
	{5, func(b *BusinessInformation) bool { return len(b.ColorPreferences) > 0 }},
	{5, func(b *BusinessInformation) bool { return len(b.StylePreferences) > 0 }},
}

const confidenceMax = 100.0

// normalizeKey lowercases and strips separators so "Food & Beverage",
// "food-beverage" and "food_beverage" all land on the same table key.
func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeIndustry maps any input string to a valid industry category.
// Total: unmatched inputs map to "other".
func NormalizeIndustry(raw string) string {
	if cat, ok := industrySynonyms[normalizeKey(raw)]; ok {
		return cat
	}
	return IndustryOther
}

// NormalizeBusinessType maps any input string to a valid business type.
// Total: unmatched inputs map to the small_business default.
func NormalizeBusinessType(raw string) string {
	if cat, ok := businessTypeSynonyms[normalizeKey(raw)]; ok {
		return cat
	}
	return BusinessTypeSmallBusiness
}

// FilterStyles keeps only entries in the closed style enum, preserving the
// order of survivors.
func FilterStyles(raw []string) []string {
	var out []string
	for _, s := range raw {
		key := strings.ToLower(strings.TrimSpace(s))
		if styleEnum[key] {
			out = append(out, key)
		}
	}
	return out
}

// extractJSONPayload tolerates chatty model output: markdown code fences
// and prose around the outermost JSON object are stripped before parsing.
func extractJSONPayload(text string) string {
	s := strings.TrimSpace(text)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// ParseBusinessInformation parses a model response into the canonical
// schema. Invalid JSON raises a ParsingError carrying the raw text
// verbatim; once past parsing, every field is coerced independently and a
// bad field never sinks its siblings.
func ParseBusinessInformation(provider, text string) (*BusinessInformation, error) {
	payload := extractJSONPayload(text)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, apperrors.NewParsingError(provider, "response is not valid JSON: "+err.Error(), text)
	}

	info := &BusinessInformation{}

	if s, ok := raw["companyName"].(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			info.CompanyName = trimmed
		}
	}
	if s, ok := raw["industry"].(string); ok && strings.TrimSpace(s) != "" {
		info.Industry = NormalizeIndustry(s)
	}
	if s, ok := raw["businessType"].(string); ok && strings.TrimSpace(s) != "" {
		info.BusinessType = NormalizeBusinessType(s)
	}
	if s, ok := raw["targetAudience"].(string); ok && strings.TrimSpace(s) != "" {
		info.TargetAudience = strings.TrimSpace(s)
	}
	info.BrandPersonality = stringList(raw["brandPersonality"])
	info.ColorPreferences = stringList(raw["colorPreferences"])
	info.StylePreferences = FilterStyles(stringList(raw["stylePreferences"]))

	if branding, ok := raw["existingBranding"].(map[string]interface{}); ok {
		eb := &ExistingBranding{
			HasLogo:     coerceBool(branding["hasLogo"]),
			BrandColors: stringList(branding["brandColors"]),
			BrandFonts:  stringList(branding["brandFonts"]),
		}
		if s, ok := branding["brandDescription"].(string); ok {
			eb.BrandDescription = strings.TrimSpace(s)
		}
		info.ExistingBranding = eb
	}

	if s, ok := raw["additionalRequirements"].(string); ok && strings.TrimSpace(s) != "" {
		info.AdditionalRequirements = strings.TrimSpace(s)
	}

	return info, nil
}

// stringList filters a decoded JSON value to trimmed non-empty strings.
// Non-arrays and non-string entries are dropped.
func stringList(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range arr {
		if s, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func coerceBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

// ScoreConfidence computes the weighted completeness score in [0, 1].
func ScoreConfidence(info *BusinessInformation) float64 {
	if info == nil {
		return 0
	}
	var score float64
	for _, w := range confidenceWeights {
		if w.present(info) {
			score += w.weight
		}
	}
	score /= confidenceMax
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// requiredFields is the only set missingFields ever draws from.
var requiredFields = []string{"companyName", "industry", "businessType"}

// MissingFields reports which of the three required fields are absent.
func MissingFields(info *BusinessInformation) []string {
	missing := []string{}
	if info == nil {
		return append(missing, requiredFields...)
	}
	if info.CompanyName == "" {
		missing = append(missing, "companyName")
	}
	if info.Industry == "" {
		missing = append(missing, "industry")
	}
	if info.BusinessType == "" {
		missing = append(missing, "businessType")
	}
	return missing
}

// Suggestions emits the fixed ordered hints, each gated on the absence of
// one optional field.
func Suggestions(info *BusinessInformation) []string {
	if info == nil {
		info = &BusinessInformation{}
	}
	var out []string
	if info.TargetAudience == "" {
		out = append(out, "Describe your target audience so the logo can speak to them directly")
	}
	if len(info.ColorPreferences) == 0 {
		out = append(out, "Mention any color preferences to guide the palette")
	}
	if len(info.StylePreferences) == 0 {
		out = append(out, "Name a few visual styles you like, such as modern or minimalist")
	}
	if len(info.BrandPersonality) == 0 {
		out = append(out, "List some brand personality traits to shape the overall feel")
	}
	return out
}
