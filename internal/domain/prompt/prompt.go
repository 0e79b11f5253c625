// Package prompt builds the instruction text sent to the completion model for
// each domain pipeline. Parameters are interpolated verbatim; every prompt
// ends with a literal example of the JSON shape the model should return.
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Strob0t/TripForge/internal/domain/trip"
)

// Itinerary builds the day-by-day schedule prompt. preferences is the
// learned-preferences mapping from memory and may be nil.
func Itinerary(req trip.Request, preferences map[string]any) string {
	if preferences == nil {
		preferences = map[string]any{}
	}
	return fmt.Sprintf(`Create a detailed %d-day itinerary for %s.
Budget: $%s
Interests: %s

Previous travel preferences: %s

Please provide:
1. Daily schedule with activities
2. Time slots for each activity
3. Transportation suggestions
4. Must-see attractions based on interests
5. Free/budget-friendly alternatives

Format as JSON with this structure:
{
    "days": [
        {
            "day": 1,
            "activities": [
                {
                    "time": "09:00",
                    "activity": "Activity name",
                    "location": "Location",
                    "duration": "2 hours",
                    "cost_estimate": "$20",
                    "description": "Brief description"
                }
            ]
        }
    ],
    "total_estimated_cost": "$400",
    "tips": ["Tip 1", "Tip 2"]
}
`, req.Duration, req.Destination, money(req.Budget), strings.Join(req.Interests, ", "), pretty(preferences))
}

// Cost builds the budget breakdown prompt. No activities are planned ahead of
// the cost estimate, so the activity list is always empty.
func Cost(req trip.Request) string {
	return fmt.Sprintf(`Provide a detailed cost breakdown for a %d-day trip to %s.
Budget: $%s
Planned activities: %s

Please estimate costs for:
1. Accommodation (per night and total)
2. Transportation (flights, local transport)
3. Food (breakfast, lunch, dinner per day)
4. Activities and attractions
5. Shopping and souvenirs
6. Emergency fund (10%% of total)

Provide 3 budget levels: Budget, Mid-range, Luxury

Format as JSON:
{
    "budget_levels": {
        "budget": {
            "accommodation": {"per_night": 50, "total": 150},
            "transportation": {"flights": 300, "local": 60},
            "food": {"per_day": 30, "total": 90},
            "activities": 100,
            "shopping": 50,
            "emergency": 75,
            "total": 825
        },
        "mid_range": {},
        "luxury": {}
    },
    "daily_spending_guide": [
        {"day": 1, "estimated_spending": 120, "breakdown": {"meals": 40, "activities": 60, "transport": 20}}
    ],
    "money_saving_tips": ["Tip 1", "Tip 2"],
    "budget_alerts": ["Warning if over budget"]
}
`, req.Duration, req.Destination, money(req.Budget), pretty([]any{}))
}

// Culture builds the etiquette and local-knowledge prompt.
func Culture(req trip.Request) string {
	return fmt.Sprintf(`Provide comprehensive cultural guidance for traveling to %s.
Traveler interests: %s

Include:
1. Cultural etiquette and customs
2. Language basics (key phrases)
3. Local food recommendations
4. What to wear/dress codes
5. Tipping customs
6. Business hours and cultural rhythms
7. Cultural taboos to avoid
8. Local festivals or events
9. Hidden gems known to locals
10. Safety and cultural sensitivity tips

Format as JSON:
{
    "cultural_etiquette": [
        {"category": "Greetings", "tip": "Bow slightly when meeting someone", "importance": "high"}
    ],
    "language_basics": {
        "essential_phrases": [
            {"english": "Thank you", "local": "Merci", "pronunciation": "mer-SEE"}
        ],
        "useful_apps": ["Duolingo", "Google Translate"]
    },
    "food_culture": {
        "must_try": ["Dish 1", "Dish 2"],
        "dietary_considerations": ["Vegetarian options", "Allergen info"],
        "dining_etiquette": ["Don't tip in restaurants", "Wait to be seated"]
    },
    "dress_code": {
        "general": "Casual dress is acceptable",
        "religious_sites": "Cover shoulders and knees",
        "business": "Formal attire expected"
    },
    "local_events": [
        {"name": "Festival Name", "dates": "Month", "description": "Brief description"}
    ],
    "hidden_gems": [
        {"name": "Secret spot", "type": "viewpoint", "tip": "Best at sunset"}
    ],
    "cultural_warnings": ["Avoid pointing with index finger", "Remove shoes indoors"]
}
`, req.Destination, strings.Join(req.Interests, ", "))
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
