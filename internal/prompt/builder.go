// Package prompt turns structured business information into image
// generation prompts.
package prompt

import (
	"fmt"
	"strings"

	"logo-engine/internal/llm"
)

// industryDescriptors adds domain flavor to the prompt per normalized
// industry category.
var industryDescriptors = map[string]string{
	llm.IndustryTechnology:   "clean tech aesthetic, forward-looking",
	llm.IndustryHealthcare:   "trustworthy, calm, care-oriented",
	llm.IndustryFinance:      "stable, precise, confidence-inspiring",
	llm.IndustryEducation:    "approachable, bright, knowledge-oriented",
	llm.IndustryRetail:       "inviting, memorable at small sizes",
	llm.IndustryFoodBeverage: "appetizing, warm, artisanal touch",
	llm.IndustryRealEstate:   "solid, established, architectural",
	llm.IndustryFitness:      "energetic, dynamic, strong lines",
	llm.IndustryBeauty:       "refined, graceful, delicate detail",
	llm.IndustryAutomotive:   "sleek, mechanical precision",
	llm.IndustryTravel:       "open, adventurous, horizon feel",
	llm.IndustryEntertain:    "expressive, playful energy",
	llm.IndustryConstruction: "sturdy, dependable, structural",
	llm.IndustryLegal:        "authoritative, balanced, classic",
	llm.IndustryMarketing:    "creative, distinctive, contemporary",
	llm.IndustryConsulting:   "professional, sharp, trustworthy",
	llm.IndustryNonprofit:    "warm, humane, community-minded",
}

// variationStyles is the fixed rotation used when a caller asks for N
// variations without naming styles.
var variationStyles = []string{
	"minimalist flat design interpretation",
	"bold geometric interpretation",
	"elegant monogram interpretation",
	"vintage badge interpretation",
	"modern gradient interpretation",
	"hand-drawn organic interpretation",
	"abstract mark interpretation",
	"classic emblem interpretation",
}

// BuildLogoPrompt composes the primary generation prompt from extracted
// business information.
func BuildLogoPrompt(info *llm.BusinessInformation) string {
	var parts []string

	name := "the business"
	if info != nil && info.CompanyName != "" {
		name = info.CompanyName
	}
	parts = append(parts, fmt.Sprintf("Professional logo design for %q", name))

	if info != nil {
		if desc, ok := industryDescriptors[info.Industry]; ok {
			parts = append(parts, desc)
		}
		if len(info.StylePreferences) > 0 {
			parts = append(parts, strings.Join(info.StylePreferences, " and ")+" style")
		}
		if len(info.ColorPreferences) > 0 {
			parts = append(parts, "color palette: "+strings.Join(info.ColorPreferences, ", "))
		}
		if len(info.BrandPersonality) > 0 {
			parts = append(parts, "brand personality: "+strings.Join(info.BrandPersonality, ", "))
		}
		if info.TargetAudience != "" {
			parts = append(parts, "appealing to "+info.TargetAudience)
		}
		if info.AdditionalRequirements != "" {
			parts = append(parts, info.AdditionalRequirements)
		}
	}

	parts = append(parts, "vector style, flat background, centered composition, high contrast, no photographic elements")

	return strings.Join(parts, ", ")
}

// VariationStyles returns n style directives from the fixed rotation.
func VariationStyles(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, variationStyles[i%len(variationStyles)])
	}
	return out
}

// BuildVariationPrompt composes a follow-up prompt against an existing
// logo's base prompt.
func BuildVariationPrompt(basePrompt, variation string) string {
	if basePrompt == "" {
		return variation
	}
	if variation == "" {
		return basePrompt
	}
	return basePrompt + ", " + variation
}
