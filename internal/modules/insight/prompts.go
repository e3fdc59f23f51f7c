package insight

// field names one question asked of a provider.
type field string

const (
	fieldSummary     field = "summary"
	fieldActionItems field = "action_items"
	fieldDecisions   field = "decisions"
	fieldQuestions   field = "questions"
	fieldSentiment   field = "sentiment"
	fieldOutcome     field = "outcome"
	fieldKeywords    field = "keywords"
	fieldAll         field = "full_insights"
)

const (
	summaryPrompt = "You are a helpful assistant that summarizes customer service conversations. " +
		"Provide a concise summary of the main points discussed, issues raised, " +
		"and resolutions reached. Focus on facts and avoid personal opinions."

	actionItemsPrompt = "Extract a list of action items from this customer service conversation. " +
		"Action items are specific tasks that need to be completed by either party. " +
		"Format your response as a JSON array of strings, each representing one action item."

	decisionsPrompt = "Extract a list of decisions made during this customer service conversation. " +
		"Decisions are choices or determinations that were agreed upon. " +
		"Format your response as a JSON array of strings, each representing one decision."

	questionsPrompt = "Extract a list of questions raised during this customer service conversation. " +
		"Include both answered and unanswered questions. " +
		"Format your response as a JSON array of strings, each representing one question."

	sentimentPrompt = "Analyze the overall sentiment of this customer service conversation. " +
		"Respond with exactly one word: 'positive', 'negative', 'neutral', or 'mixed'."

	outcomePrompt = "Determine the outcome of this customer service conversation. " +
		"Respond with exactly one word: " +
		"'yes' (issue resolved), " +
		"'no' (issue not resolved), " +
		"'maybe' (unclear if resolved), or " +
		"'curious' (question was asked but not answered)."

	keywordsPrompt = "Extract the 5-10 most important keywords or phrases from this customer service conversation. " +
		"Focus on terms that capture the main topics, products, or issues discussed. " +
		"Format your response as a JSON array of strings."

	fullInsightsPrompt = "Analyze this customer service conversation and provide the following insights in JSON format:\n" +
		"1. summary: A concise summary of the conversation\n" +
		"2. action_items: Array of action items to be completed\n" +
		"3. decisions: Array of decisions made during the conversation\n" +
		"4. questions: Array of questions raised during the conversation\n" +
		"5. sentiment: Overall sentiment as 'positive', 'negative', 'neutral', or 'mixed'\n" +
		"6. outcome: Conversation outcome as 'yes', 'no', 'maybe', or 'curious'\n" +
		"7. keywords: Array of 5-10 important keywords or phrases\n\n" +
		"Respond with valid JSON only."
)

var prompts = map[field]string{
	fieldSummary:     summaryPrompt,
	fieldActionItems: actionItemsPrompt,
	fieldDecisions:   decisionsPrompt,
	fieldQuestions:   questionsPrompt,
	fieldSentiment:   sentimentPrompt,
	fieldOutcome:     outcomePrompt,
	fieldKeywords:    keywordsPrompt,
	fieldAll:         fullInsightsPrompt,
}
