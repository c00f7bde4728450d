package constant

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
	TurnRoleSystem    = "system"

	// RAGSystemPrompt grounds the model strictly in the retrieved evidence.
	RAGSystemPrompt = `You are a RAG assistant. Answer ONLY with the context below. Cite sources like [file:... page:...]. If the context does not contain the answer, say you don't have that information in the uploaded documents.`

	// RAGAnswerPrompt wraps the evidence block and the user question.
	RAGAnswerPrompt = `Context:
%s

Question: %s

Answer:`

	// TitlePrompt generates a short conversation title from the first question.
	TitlePrompt = `Write a short title (max 6 words) for a conversation that starts with this question. Output only the title, no quotes.

Question: %s

Title:`

	DefaultConversationTitle = "New conversation"

	// GenerateTitleTopic is the in-process topic for async title generation.
	GenerateTitleTopic = "GENERATE_CONVERSATION_TITLE"
)
