package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

func buildEnhancePrompt(idea, locale string) string {
	sb := &strings.Builder{}
	sb.WriteString("You are an expert in creating viral video content. Please enhance the following video idea to make it more engaging, trendy, and likely to go viral on social media platforms like TikTok, Instagram Reels, and YouTube Shorts.\n\n")
	fmt.Fprintf(sb, "Original idea: %s\n\n", idea)
	sb.WriteString("Please provide an enhanced version that:\n")
	sb.WriteString("- Incorporates current trends\n")
	sb.WriteString("- Has strong hook potential\n")
	sb.WriteString("- Is optimized for short-form content\n")
	sb.WriteString("- Includes engaging elements like humor, surprise, or emotion\n")
	sb.WriteString("- Is concise and actionable\n")
	if instr := languageInstruction(locale); instr != "" {
		sb.WriteString(instr + "\n")
	}
	sb.WriteString("\nEnhanced idea:")
	return sb.String()
}

func buildIdeasPrompt(req IdeasRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("You are an expert in creating viral video content. Based on the following video idea, generate 4 specific prompts that will help create a viral video.\n\n")
	fmt.Fprintf(sb, "Video idea: %s\n", req.Idea)
	if req.Enhanced {
		sb.WriteString("(This idea has been AI-enhanced)\n")
	}
	sb.WriteString("\nPlease provide exactly 4 prompts in the following categories:\n")
	sb.WriteString("1. Opening Hook - How to start the video to grab attention immediately\n")
	sb.WriteString("2. Main Content - The core content structure and flow\n")
	sb.WriteString("3. Engagement Boost - Elements to increase viewer interaction and engagement\n")
	sb.WriteString("4. Call to Action - How to end the video to maximize shares and follows\n\n")
	sb.WriteString("Format each prompt as:\nTitle: [Category Name]\nContent: [Detailed prompt instructions]\n")
	if instr := languageInstruction(req.Locale); instr != "" {
		sb.WriteString(instr + " Keep the \"Title:\" and \"Content:\" labels in English.\n")
	}
	sb.WriteString("\nPrompts:")
	return sb.String()
}

// languageInstruction asks for a non-English answer when the locale names
// a known language. English and unparsable locales add nothing.
func languageInstruction(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return ""
	}
	name := display.English.Tags().Name(language.Make(base.String()))
	if name == "" {
		return ""
	}
	return fmt.Sprintf("Write the response in %s.", name)
}

// extractEnhancedIdea returns the text after an "Enhanced idea:" or
// "Enhanced version:" label (same line or the next one), falling back to
// the last non-empty line.
func extractEnhancedIdea(response string) string {
	lines := nonEmptyLines(trimCodeFence(response))
	for i, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "enhanced idea:") && !strings.Contains(lower, "enhanced version:") {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			if rest := cleanLine(line[idx+1:]); rest != "" {
				return rest
			}
		}
		if i+1 < len(lines) {
			return cleanLine(lines[i+1])
		}
	}
	if len(lines) == 0 {
		return strings.TrimSpace(response)
	}
	return cleanLine(lines[len(lines)-1])
}

var titleCaser = cases.Title(language.English)

// parseIdeas reads "Title:" / "Content:" pairs. A bare line right after a
// title is taken as its content. Titles without content are dropped.
func parseIdeas(response string) []Idea {
	var (
		ideas   []Idea
		current *Idea
	)
	flush := func() {
		if current != nil && current.Content != "" {
			current.Category = categorize(current.Title, len(ideas))
			ideas = append(ideas, *current)
		}
		current = nil
	}
	for _, line := range nonEmptyLines(trimCodeFence(response)) {
		line = cleanLine(line)
		switch {
		case hasPrefixFold(line, "title:"):
			flush()
			title := strings.Trim(strings.TrimSpace(line[len("title:"):]), "[]*")
			current = &Idea{Title: titleCaser.String(strings.TrimSpace(title))}
		case hasPrefixFold(line, "content:") && current != nil:
			current.Content = strings.TrimSpace(line[len("content:"):])
		case current != nil && current.Content == "" && line != "":
			current.Content = line
		}
	}
	flush()
	return ideas
}

func categorize(title string, index int) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "hook") || strings.Contains(t, "opening"):
		return CategoryHook
	case strings.Contains(t, "engagement") || strings.Contains(t, "interaction"):
		return CategoryEngagement
	case strings.Contains(t, "call to action") || strings.Contains(t, "cta"):
		return CategoryCTA
	case strings.Contains(t, "content") || strings.Contains(t, "main"):
		return CategoryContent
	}
	order := []string{CategoryHook, CategoryContent, CategoryEngagement, CategoryCTA}
	if index < len(order) {
		return order[index]
	}
	return CategoryContent
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// cleanLine strips list numbering and markdown emphasis around a line.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*# ")
	if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 && i+1 < len(line) && line[i+1] == ' ' && isDigits(line[:i]) {
		line = strings.TrimSpace(line[i+1:])
	}
	line = strings.ReplaceAll(line, "**", "")
	return strings.TrimSpace(line)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```text")
	trimmed = strings.TrimPrefix(trimmed, "```markdown")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
