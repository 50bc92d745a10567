package quality

import (
	"fmt"
	"strings"
)

const systemPrompt = `
You review personal goals written in an OKR style app (yearly ambitions, quarterly
objectives, key results and actions).

Rules:
1. Reply with suggestions that make the goal clearer, measurable and time-bound.
2. At most 5 suggestions, each one short and actionable.
3. Write in the same language as the goal title.
4. Never invent facts about the user beyond the profile given.
5. Reply with pure, valid JSON: an array of strings, nothing outside it.

Example:
["Replace 'get fit' with a measurable target such as 'run 5 km in under 30 minutes'",
 "Add a deadline at the end of the quarter"]
`

func buildUserPrompt(c Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal type: %s\n", c.Kind)
	fmt.Fprintf(&b, "Title: %q\n", c.Title)
	if c.Description != "" {
		fmt.Fprintf(&b, "Description: %q\n", c.Description)
	}
	if c.TargetValue != nil {
		fmt.Fprintf(&b, "Target: %g %s\n", *c.TargetValue, c.Unit)
	}
	if c.Deadline != nil {
		fmt.Fprintf(&b, "Deadline: %s\n", c.Deadline.Format("2006-01-02"))
	}
	if c.Profile != "" {
		fmt.Fprintf(&b, "About the user: %s\n", c.Profile)
	}
	b.WriteString("Suggest improvements for this goal.")
	return b.String()
}
