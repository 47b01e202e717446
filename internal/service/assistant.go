package service

import (
	"fmt"
	"strings"
)

// AssistantService answers sales-floor coaching questions from a canned
// keyword-matched response table. It keeps the conversational surface of
// the store assistant without an external LLM dependency.
type AssistantService struct{}

func NewAssistantService() *AssistantService {
	return &AssistantService{}
}

// cannedResponse pairs trigger keywords with a short coaching reply.
// First match wins, so more specific triggers come first.
type cannedResponse struct {
	keywords []string
	reply    string
}

var cannedResponses = []cannedResponse{
	{
		keywords: []string{"commission", "tier", "earnings"},
		reply: "Commission tiers are driven by accessory revenue, so every charger and case moves you up the table. " +
			"Hit the next accessory target and your activation and upgrade rates jump too.",
	},
	{
		keywords: []string{"objection", "too expensive", "price"},
		reply: "Get them talking about what frustrates them with their current setup before you defend the price. " +
			"Value lands better once the problem is on the table.",
	},
	{
		keywords: []string{"accessory", "accessories", "case", "charger"},
		reply: "Pair accessories with the device at checkout instead of asking afterwards. " +
			"A case and protector offered while the phone is in their hands closes far more often.",
	},
	{
		keywords: []string{"activation", "new line", "new customer"},
		reply: "For activations, lead with coverage and total monthly cost, not the device. " +
			"Ask what they pay today and show the difference on paper.",
	},
	{
		keywords: []string{"upgrade"},
		reply: "Upgrade conversations go best when you start from what their current phone can't do anymore. " +
			"Battery life and camera are the two complaints that convert.",
	},
	{
		keywords: []string{"protection", "insurance", "warranty"},
		reply: "Frame protection as the cost of one cracked screen spread over the year. " +
			"Mention it while handing the phone over, not as a final add-on.",
	},
	{
		keywords: []string{"unhappy", "angry", "refund", "complaint"},
		reply: "Let an unhappy customer finish before you respond, then restate their issue in your own words. " +
			"Most escalations are about feeling unheard, not the policy.",
	},
	{
		keywords: []string{"demo", "show", "compare"},
		reply: "Put the device in the customer's hands within the first minute and let them drive. " +
			"People buy what they've already used.",
	},
}

const assistantFallback = "Good question. Focus on asking the customer better questions about how they use " +
	"their phone today; the pitch writes itself once you know their frustrations."

// Ask returns a coaching reply for the prompt. Unmatched prompts get a
// generic coaching nudge rather than an error.
func (s *AssistantService) Ask(prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}

	lower := strings.ToLower(trimmed)
	for _, cr := range cannedResponses {
		for _, kw := range cr.keywords {
			if strings.Contains(lower, kw) {
				return cr.reply, nil
			}
		}
	}
	return assistantFallback, nil
}

var baseSuggestedQuestions = map[string][]string{
	"sales": {
		"How can I increase my sales?",
		"What are the best sales techniques for accessories?",
		"How should I handle customer objections?",
		"What's the most effective way to demo a new phone?",
	},
	"commission": {
		"How is commission calculated?",
		"What's the commission structure for our plans?",
		"How can I maximize my commission earnings?",
	},
	"products": {
		"What are the key differences between our plans?",
		"What are the best selling accessories?",
		"Which phones offer the best value for customers?",
	},
	"customer_service": {
		"How do I handle an unhappy customer?",
		"What's the process for handling refunds?",
		"What's the best way to convert a browsing customer to a sale?",
	},
}

var customerTypeQuestions = map[string][]string{
	"budget_conscious": {
		"How can I explain the value in our budget phones?",
		"How do I handle customers who say our prices are too high?",
	},
	"tech_enthusiast": {
		"What cutting-edge features should I highlight in our flagship devices?",
		"What accessories pair best with high-end phones?",
	},
	"business_user": {
		"What features should I emphasize for business customers?",
		"How can I sell mobile hotspot features to business professionals?",
	},
	"senior": {
		"What are the best phone options for seniors with limited tech experience?",
		"What accessibility features should I highlight?",
	},
	"family_manager": {
		"How do I explain the benefits of our family plans?",
		"What's the best way to explain line discounts for multiple devices?",
	},
}

// SuggestedQuestions returns the base question categories, plus a persona
// category when customerType names a known persona.
func (s *AssistantService) SuggestedQuestions(customerType string) map[string][]string {
	out := make(map[string][]string, len(baseSuggestedQuestions)+1)
	for k, v := range baseSuggestedQuestions {
		out[k] = v
	}
	if qs, ok := customerTypeQuestions[customerType]; ok {
		out[customerType] = qs
	}
	return out
}
