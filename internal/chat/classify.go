// Package chat holds the scripted Nestlink assistant: a keyword classifier
// choosing a canned reply, and the conversation state around it.
package chat

import (
	"fmt"
	"strings"

	"nestlink/server/config"
)

// Topic is the category a message was classified into
type Topic string

const (
	TopicProperty Topic = "property"
	TopicPricing  Topic = "pricing"
	TopicLocation Topic = "location"
	TopicAdvice   Topic = "advice"
	TopicGeneral  Topic = "general"
)

// rules are tried in order; the first topic with a matching keyword wins.
var rules = []struct {
	topic    Topic
	keywords []string
}{
	{TopicProperty, []string{"property", "house", "apartment"}},
	{TopicPricing, []string{"price", "cost", "expensive"}},
	{TopicLocation, []string{"location", "area", "where"}},
	{TopicAdvice, []string{"advice", "tip", "help"}},
}

// TopicOf returns the topic Classify would answer message with.
func TopicOf(message string) Topic {
	lower := strings.ToLower(message)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.topic
			}
		}
	}
	return TopicGeneral
}

// Classify returns the assistant's reply to message. Matching is
// case-insensitive substring search, so "warehouse" counts as a house. The
// property and general replies quote message exactly as given.
func Classify(message string) string {
	switch TopicOf(message) {
	case TopicProperty:
		return fmt.Sprintf(propertyReply, message)
	case TopicPricing:
		return pricingReply
	case TopicLocation:
		return areaGuide()
	case TopicAdvice:
		return adviceReply
	default:
		return fmt.Sprintf(generalReply, message)
	}
}

func areaGuide() string {
	var b strings.Builder
	b.WriteString("I have access to comprehensive location data! Popular areas in Nairobi include:\n\n")
	for _, area := range config.PopularAreas {
		fmt.Fprintf(&b, "📍 **%s** - %s\n", area.Name, area.Summary)
	}
	b.WriteString("\nI can show you available properties in any of these areas or help you compare locations.")
	return b.String()
}

const propertyReply = `I can help you with property information! Based on your query about "%s", I found several relevant properties in our database. Would you like me to:

• Show available properties matching your criteria?
• Provide pricing trends in specific areas?
• Explain the booking process?
• Compare different property types?

What specific information are you looking for?`

const pricingReply = `I can analyze pricing information for you! Current market trends show:

🏠 Average rental prices in Nairobi:
• Apartments: Ksh 15,000 - 45,000/month
• Houses: Ksh 30,000 - 120,000/month
• Studios: Ksh 10,000 - 25,000/month

I can provide more specific pricing if you tell me your preferred location and property type.`

const adviceReply = `As your Nestlink assistant, here are some expert tips:

💡 **Property Selection Tips:**
• Consider proximity to work/amenities
• Check security and neighborhood
• Verify property condition thoroughly
• Review all contract terms carefully

💡 **Booking Process:**
1. View properties and shortlist favorites
2. Schedule physical/virtual tours
3. Review and sign agreement
4. Make secure payment through our platform

Is there a specific aspect you'd like more detailed advice on?`

const generalReply = `Thank you for your message! As the Nestlink AI assistant, I can help you with:

🔍 **Property Search & Recommendations**
💰 **Pricing Analysis & Comparisons**
📍 **Location Insights & Area Guides**
📊 **Market Trends & Data Visualization**
🤝 **Booking Process Assistance**
❓ **General Real Estate Advice**

Based on your query "%s", I'd be happy to provide specific information. Could you tell me more about what you're looking for?`
