// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// PERSONA
// =============================================================================

// Persona is a named agent specialization served by the gateway.
type Persona struct {
	Type        string `json:"type"`
	DisplayName string `json:"name"`
	Description string `json:"description"`
}

// Well-known persona types served by the storefront backend.
const (
	PersonaSales         = "sales"
	PersonaProductExpert = "product_expert"
	PersonaSupport       = "support"
)

// DefaultPersonas mirrors what the backend returns from its availability
// endpoint. Used by the offline gateway and as a display fallback.
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Type:        PersonaSales,
			DisplayName: "Sales Assistant",
			Description: "Helps with product recommendations, deals, and purchasing decisions",
		},
		{
			Type:        PersonaProductExpert,
			DisplayName: "Product Expert",
			Description: "Provides detailed product information, specifications, and comparisons",
		},
		{
			Type:        PersonaSupport,
			DisplayName: "Customer Support",
			Description: "Assists with orders, returns, account issues, and general support",
		},
	}
}

// PersonaActions returns the quick actions offered right after switching to
// personaType. Unknown types get the generic browse/help pair.
func PersonaActions(personaType string) []SuggestedAction {
	switch personaType {
	case PersonaSales:
		return []SuggestedAction{
			{Label: "Browse Products", ActionID: string(ActionBrowseProducts)},
			{Label: "View Deals", ActionID: string(ActionViewDeals)},
			{Label: "Get Recommendations", ActionID: string(ActionGetRecommendations)},
		}
	case PersonaProductExpert:
		return []SuggestedAction{
			{Label: "Compare Products", ActionID: string(ActionCompareProducts)},
			{Label: "View Specifications", ActionID: string(ActionViewSpecs)},
			{Label: "Check Compatibility", ActionID: string(ActionCheckCompatibility)},
		}
	case PersonaSupport:
		return []SuggestedAction{
			{Label: "Track Order", ActionID: string(ActionTrackOrder)},
			{Label: "Return Item", ActionID: string(ActionReturnItem)},
			{Label: "Account Help", ActionID: string(ActionAccountHelp)},
		}
	default:
		return []SuggestedAction{
			{Label: "Browse Products", ActionID: string(ActionBrowseProducts)},
			{Label: "Get Help", ActionID: string(ActionGetHelp)},
		}
	}
}
