package intent

import "strings"

// Intent labels attached to questions. The label is advisory metadata only;
// it does not change retrieval or prompting.
const (
	Weather       = "weather"
	SkiPass       = "ski_pass"
	Accommodation = "accommodation"
	Transport     = "transport"
	Dining        = "dining"
	Safety        = "safety"
	General       = "general"
)

type rule struct {
	label    string
	keywords []string
}

// Rules are checked in order and the first match wins, so broad keywords
// like "pass" sit behind more specific ones.
var rules = []rule{
	{Weather, []string{"snow", "weather", "conditions"}},
	{SkiPass, []string{"ski pass", "lift ticket", "pass"}},
	{Accommodation, []string{"accommodation", "hotel", "lodge"}},
	{Transport, []string{"transport", "bus", "shuttle"}},
	{Dining, []string{"food", "dining", "restaurant"}},
	{Safety, []string{"safety", "guidelines", "rules"}},
}

// Classify assigns a coarse topic label to a question by case-insensitive
// keyword matching. Questions matching no rule are labelled General.
func Classify(question string) string {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.label
			}
		}
	}
	return General
}
