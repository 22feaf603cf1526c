// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// ACTION KINDS
// =============================================================================

// ActionKind identifies a suggested action the client knows how to phrase.
type ActionKind string

const (
	ActionBrowseProducts     ActionKind = "browse_products"
	ActionViewCart           ActionKind = "view_cart"
	ActionViewDeals          ActionKind = "view_deals"
	ActionViewProduct        ActionKind = "view_product"
	ActionCompareProducts    ActionKind = "compare_products"
	ActionViewReviews        ActionKind = "view_reviews"
	ActionTrackOrder         ActionKind = "track_order"
	ActionViewOrders         ActionKind = "view_orders"
	ActionCheckOrders        ActionKind = "check_orders"
	ActionReturnItem         ActionKind = "return_item"
	ActionContactSupport     ActionKind = "contact_support"
	ActionGetHelp            ActionKind = "get_help"
	ActionAccountHelp        ActionKind = "account_help"
	ActionGetRecommendations ActionKind = "get_recommendations"
	ActionViewSpecs          ActionKind = "view_specs"
	ActionCheckCompatibility ActionKind = "check_compatibility"

	// ActionOpaque marks an identifier the client does not recognise.
	ActionOpaque ActionKind = ""
)

var actionText = map[ActionKind]string{
	ActionBrowseProducts:     "Show me your latest products",
	ActionViewCart:           "I want to see my shopping cart",
	ActionViewDeals:          "What deals and offers do you have?",
	ActionViewProduct:        "Tell me more about this product",
	ActionCompareProducts:    "Help me compare similar products",
	ActionViewReviews:        "Show me customer reviews",
	ActionTrackOrder:         "I want to track my order",
	ActionViewOrders:         "Show me my recent orders",
	ActionCheckOrders:        "Show me my recent orders",
	ActionReturnItem:         "I'd like to return an item",
	ActionContactSupport:     "I need to contact customer support",
	ActionGetHelp:            "I need help with my account",
	ActionAccountHelp:        "I need help with my account",
	ActionGetRecommendations: "Can you recommend something for me?",
	ActionViewSpecs:          "Show me the detailed specifications",
	ActionCheckCompatibility: "Will this work with what I already have?",
}

// Action is a parsed suggested-action identifier.
type Action struct {
	Kind ActionKind
	ID   string
}

// ParseAction classifies a raw action identifier. Matching ignores case and
// surrounding whitespace; anything unknown is ActionOpaque.
func ParseAction(id string) Action {
	key := ActionKind(strings.ToLower(strings.TrimSpace(id)))
	if _, ok := actionText[key]; ok {
		return Action{Kind: key, ID: id}
	}
	return Action{Kind: ActionOpaque, ID: id}
}

// Known reports whether the action maps to canonical text.
func (a Action) Known() bool {
	return a.Kind != ActionOpaque
}

// FollowUpText is the user message sent when the action is chosen. Opaque
// identifiers are forwarded verbatim.
func (a Action) FollowUpText() string {
	if text, ok := actionText[a.Kind]; ok {
		return text
	}
	return strings.TrimSpace(a.ID)
}

// ActionKinds lists every known kind in a stable order.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionBrowseProducts, ActionViewCart, ActionViewDeals, ActionViewProduct,
		ActionCompareProducts, ActionViewReviews, ActionTrackOrder, ActionViewOrders,
		ActionCheckOrders, ActionReturnItem, ActionContactSupport, ActionGetHelp,
		ActionAccountHelp, ActionGetRecommendations, ActionViewSpecs, ActionCheckCompatibility,
	}
}
