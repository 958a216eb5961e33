package prompt

import "testing"

func TestExtractEnhancedIdea(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{name: "same line", response: "Enhanced idea: A tiny chef cooks for ants", want: "A tiny chef cooks for ants"},
		{name: "case insensitive label", response: "ENHANCED VERSION: Dance battle in a library", want: "Dance battle in a library"},
		{name: "next line", response: "Here you go.\nEnhanced idea:\n\nA glow-in-the-dark skate park tour", want: "A glow-in-the-dark skate park tour"},
		{name: "bold label", response: "**Enhanced idea:** Grandma reviews energy drinks", want: "Grandma reviews energy drinks"},
		{name: "last line fallback", response: "Thinking...\nA dog narrates its own walk", want: "A dog narrates its own walk"},
		{name: "fenced", response: "```\nEnhanced idea: Slow-mo water balloon duel\n```", want: "Slow-mo water balloon duel"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := extractEnhancedIdea(tc.response); got != tc.want {
				t.Fatalf("extractEnhancedIdea() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseIdeasDropsTitlesWithoutContent(t *testing.T) {
	t.Parallel()
	ideas := parseIdeas("Title: Opening Hook\nTitle: Main Content\nContent: Keep it moving.")
	if len(ideas) != 1 {
		t.Fatalf("ideas = %+v, want one", ideas)
	}
	if ideas[0].Title != "Main Content" || ideas[0].Category != CategoryContent {
		t.Fatalf("ideas[0] = %+v", ideas[0])
	}
}

func TestLanguageInstruction(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":      "",
		"en":    "",
		"en-GB": "",
		"id":    "Write the response in Indonesian.",
		"es-MX": "Write the response in Spanish.",
		"!!":    "",
	}
	for locale, want := range tests {
		if got := languageInstruction(locale); got != want {
			t.Fatalf("languageInstruction(%q) = %q, want %q", locale, got, want)
		}
	}
}

func TestStaticIdeas(t *testing.T) {
	t.Parallel()
	ideas := StaticIdeas("  surfing cats ")
	categories := []string{CategoryHook, CategoryContent, CategoryEngagement, CategoryCTA}
	if len(ideas) != len(categories) {
		t.Fatalf("len(ideas) = %d, want %d", len(ideas), len(categories))
	}
	for i, c := range categories {
		if ideas[i].Category != c {
			t.Fatalf("ideas[%d].Category = %q, want %q", i, ideas[i].Category, c)
		}
	}
	if ideas[1].Content != "Create engaging content around: surfing cats. Keep it fast-paced and visually interesting for maximum retention." {
		t.Fatalf("main content = %q", ideas[1].Content)
	}
}
