package triage

// Prompt templates for the four stages. Each takes the processed email
// body as its single format argument, except the drafter which also
// takes tone guidance.

const urgencyPromptFormat = `You are an email triage assistant. Judge whether the following email is urgent.
Urgency cues include explicit deadlines, time-bound requests, and words like "urgent", "asap" or "immediately".
Respond with a JSON object containing:
- is_urgent: boolean (true only when the email clearly needs immediate attention)
- reason: string (the phrase or cue that triggered your judgement, or why it is not urgent)

Email:
%s

Respond only with the JSON object and nothing else.`

const classifyPromptFormat = `You are an email triage assistant. Classify the following email into exactly one of these categories:
Work, Personal, Spam, Other

Email:
%s

Respond with only the category label and nothing else.`

const summaryPromptFormat = `You are an email triage assistant. Summarize the following email in 2-3 clear, concise sentences.
Preserve the key facts: who is writing, what they want, and any dates or times mentioned.
Omit greetings and signatures.

Email:
%s

Respond with only the summary text.`

const draftPromptFormat = `You are an expert communicator. Draft a reply to the following email.

Email:
%s

Guidelines:
- Use a %s
- Keep it concise and contextually appropriate
- Address any requests or questions in the email%s

Respond with only the reply text.`

// toneGuides maps a category to the tone the draft should take,
// mirroring the tone table of the original assistant.
var toneGuides = map[string]string{
	"Work":     "professional, respectful tone",
	"Personal": "friendly and warm tone",
	"Other":    "neutral, polite tone",
}

const urgentDraftHint = "\n- The email is urgent; acknowledge the time constraint in your reply"
