package gemini

// systemPrompt frames every extraction call. Kept short: the state machine
// owns the conversation flow, the model only recognizes fields.
const systemPrompt = `You are the entity extraction component of a meeting
scheduling assistant. Users schedule meetings by chatting in free form; your
only job is to recognize structured scheduling fields in their latest
message. You never answer the user directly.`

// extractionPrompt asks for a single JSON object. The caller tolerates any
// surrounding prose and degrades to an empty record on parse failure.
const extractionPrompt = `Extract structured information from the user's message for meeting scheduling.

ALREADY COLLECTED:
%s
CONVERSATION HISTORY:
%s
USER MESSAGE: %q

CURRENT TIME: %s

Extract and return ONLY a JSON object with these fields (use null for missing info):
{
  "duration_minutes": number or null,
  "date_preference": "string description or null",
  "time_preference": "string description or null",
  "meeting_title": "string or null",
  "intent": "greeting|duration|date|time|slot_selection|title|confirmation|restart|unclear",
  "slot_number": number or null (if selecting from numbered options),
  "confirmation": "yes|no|null" (for booking confirmations)
}`

// datePrompt resolves a natural-language date phrase against a "now" anchor.
const datePrompt = `Parse this date expression into a specific date. Current date: %s

Date expression: %q

Return the date in format: YYYY-MM-DD

Examples:
"tomorrow" -> %s
"next Tuesday" -> (calculate next Tuesday from current date)
"June 15" -> (use the current year if not specified)

If unclear or invalid, return "INVALID".`
