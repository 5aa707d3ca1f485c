package profile

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs chat models to answer with a single HTML document.
const SystemPrompt = `You are a web designer. Build a personal portfolio website from the details provided.

Respond with ONE complete, self-contained HTML document (inline CSS, no external build step)
inside a single fenced code block tagged html. Do not split the page across several blocks.`

// Prompt renders the profile as the user message for chat models.
func (p Profile) Prompt() string {
	var sb strings.Builder

	sb.WriteString("Create a portfolio page for the following person.\n\n")
	field := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", label, value)
		}
	}
	field("Full name", p.FullName)
	field("Job title", p.JobTitle)
	field("About", p.AboutMe)
	if skills := p.SkillList(); len(skills) > 0 {
		field("Skills", strings.Join(skills, ", "))
	}
	field("Email", p.Email)
	field("Phone", p.Phone)
	field("Location", p.Location)
	field("Born", p.Birth)
	field("Years of experience", p.ExperienceYears)
	field("Education", p.Education)
	field("Social links", p.SocialLinks)

	return sb.String()
}
