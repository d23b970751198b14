package services

import (
	"encoding/json"

	"github.com/edusphere/ai-service/internal/models"
)

// Prompts are structured JSON documents rather than free-form text. The
// completion model follows field-level instructions far more reliably when
// the task, context, and output contract are spelled out as data.

type planPromptRequirements struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Outline     planOutlineRequirements `json:"outline"`
}

type planOutlineRequirements struct {
	SectionCount string `json:"sectionCount"`
	Coverage     string `json:"coverage"`
	Structure    string `json:"structure"`
	Sequencing   string `json:"sequencing"`
}

// buildPlanPrompt produces the consolidated plan prompt covering topic,
// title, description, and the section outline in a single completion.
func buildPlanPrompt(userRequest string) string {
	prompt := map[string]any{
		"task": "generate_lesson_plan",
		"context": map[string]any{
			"userRequest": userRequest,
			"requirements": planPromptRequirements{
				Title:       "Comprehensive and educational",
				Description: "Brief but informative",
				Outline: planOutlineRequirements{
					SectionCount: "Between 3-7 sections",
					Coverage:     "All important aspects from user request",
					Structure:    "Logical progression from basics to advanced",
					Sequencing:   "Each section must have a sequence number indicating its order",
				},
			},
		},
		"output_format": map[string]any{
			"type": "json",
			"fields": map[string]string{
				"topic":       "string - concise educational topic name",
				"title":       "string - comprehensive lesson title",
				"description": "string - brief informative description",
				"outline":     "array of objects { sequenceNumber: number, title: string }",
			},
			"example": map[string]any{
				"topic":       "React Hooks Fundamentals",
				"title":       "Understanding React Hooks: A Comprehensive Guide",
				"description": "A deep dive into React Hooks, covering their purpose, common use cases, and best practices for modern React development.",
				"outline": []map[string]any{
					{"sequenceNumber": 1, "title": "Introduction to React Hooks"},
					{"sequenceNumber": 2, "title": "Understanding useState"},
					{"sequenceNumber": 3, "title": "Effect Hook Deep Dive"},
				},
			},
		},
	}
	return mustJSON(prompt)
}

// buildSectionPrompt produces the prompt for one section's teaching content
// together with a time estimate in seconds.
func buildSectionPrompt(userRequest, topic, sectionTitle string) string {
	prompt := map[string]any{
		"task": "generate_section_content_with_time",
		"context": map[string]any{
			"userRequest":  userRequest,
			"topic":        topic,
			"sectionTitle": sectionTitle,
			"requirements": map[string]any{
				"content": map[string]any{
					"style":    "Educational and clear",
					"elements": []string{"Explanations", "Examples", "Practical applications"},
					"focus":    "Direct answers to user's learning goals",
				},
				"timeEstimation": map[string]any{
					"factors": map[string]string{
						"reading":     "Base reading time",
						"explanation": "Time for concept explanation",
						"examples":    "Time for working through examples",
						"discussion":  "Interactive elements",
					},
				},
			},
		},
		"output_format": map[string]any{
			"type": "json",
			"fields": map[string]string{
				"content":          "string with markdown formatting",
				"estimatedSeconds": "number - time in seconds to cover this content",
			},
		},
	}
	return mustJSON(prompt)
}

// interactionPromptInput carries everything the tutoring prompt needs
type interactionPromptInput struct {
	User             *models.User
	Lesson           *models.Lesson
	Content          *models.LessonContent
	NextContent      *models.LessonContent
	FormattedHistory string
	UserQuestion     string
	Language         string
	IsCompletion     bool
}

// buildInteractionPrompt produces the tutoring prompt for one chat turn.
// When the learner signals completion intent, review and transition
// instructions are added; the next section's title and description are
// included so the model can preview it.
func buildInteractionPrompt(in interactionPromptInput) string {
	requirements := map[string]any{
		"responseStyle": "Warm, friendly, and conversational - use emojis, laugh (using \U0001F604 or \U0001F60A), and be encouraging. Keep sentences short and clear. Respond in the student's specified language.",
		"focus":         "Teach one small concept at a time! Use short, clear sentences. Break down concepts into digestible pieces. Maximum response length is 2000 characters.",
		"progression":   "Adapt teaching style based on current progress and understanding. Teach in small, manageable chunks.",
	}

	if in.IsCompletion {
		if in.NextContent != nil {
			requirements["completionCheck"] = "Give a brief review of key points, celebrate their understanding, and give a short preview of the next topic!"
			requirements["nextContent"] = map[string]string{
				"title":       in.NextContent.Title,
				"description": in.NextContent.Description,
			}
		} else {
			requirements["completionCheck"] = "Give a quick review of main concepts learned, celebrate their completion! Keep it short and encouraging."
		}
	}

	nextTransition := "Short celebration of completing the lesson!"
	if in.NextContent != nil {
		nextTransition = "Give a quick preview of the next exciting topic!"
	}

	accessibilityNeeds := in.User.AccessibilityNeeds
	if accessibilityNeeds == nil {
		accessibilityNeeds = []string{}
	}

	prompt := map[string]any{
		"task": "educational_interaction",
		"context": map[string]any{
			"student": map[string]any{
				"name":               in.User.Name,
				"language":           in.Language,
				"accessibilityNeeds": accessibilityNeeds,
			},
			"lesson": map[string]string{
				"title":       in.Lesson.Title,
				"description": in.Lesson.Description,
			},
			"currentContent": map[string]any{
				"title":           in.Content.Title,
				"content":         in.Content.Content,
				"sequenceNumber":  in.Content.SequenceNumber,
				"isLastContent":   in.NextContent == nil,
				"currentProgress": in.Content.CurrentProgress,
			},
			"chatHistory":  in.FormattedHistory,
			"userQuestion": in.UserQuestion,
			"teacherProfile": map[string]any{
				"role":        "Friendly and Enthusiastic Educational AI Assistant with PhD",
				"personality": "Warm, encouraging, and relatable - like a supportive friend who happens to be an expert",
				"traits": []string{
					"Responds in the user's specified language.",
					"Includes proper intonation markers for the specified language (e.g., accents, tones).",
					"Teaches one concept at a time with clear examples",
					"Uses short, easy-to-follow sentences",
					"Keeps explanations concise and focused",
					"Uses friendly language and emojis naturally",
					"Shows excitement about teaching the topic",
					"Adapts teaching style based on progress",
				},
				"teachingStyle": map[string]string{
					"newConcept":    "Start with a friendly, brief introduction and basic explanation",
					"inProgress":    "Build upon previous knowledge with small, digestible additions",
					"reinforcement": "Connect concepts using clear, short examples",
					"mastery":       "Challenge with quick, practical applications",
				},
			},
			"requirements": requirements,
			"completionGuidelines": map[string]any{
				"verificationRequired": in.IsCompletion,
				"teachingProgress": map[string]string{
					"0":   "Start with basic concepts - one at a time \U0001F331",
					"25":  "Add simple examples and details \U0001F33F",
					"50":  "Show quick, practical applications \U0001F333",
					"75":  "Connect concepts with short examples \U0001F33A",
					"100": "Quick celebration and next steps! \U0001F31F",
				},
				"nextContentTransition": nextTransition,
			},
			"responseConstraints": map[string]any{
				"maxLength": maxResponseLength,
				"style":     "Short sentences, clear points",
				"structure": []string{
					"Start with a brief greeting",
					"Teach one small concept",
					"Give a quick example",
					"Check understanding",
					"Keep total response under 2000 characters",
				},
			},
		},
		"output_format": map[string]any{
			"type": "json",
			"fields": map[string]string{
				"aiResponse": "string - teach content in short, clear sentences (max 2000 chars)",
				"completion": "number - progress percentage (0-100)",
			},
		},
	}
	return mustJSON(prompt)
}

// mustJSON marshals a prompt document. The inputs are composed of plain
// maps, slices, and strings, so marshalling cannot fail.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
