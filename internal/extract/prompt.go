package extract

const extractPrompt = `You are an intent extraction system. Analyze the following raw input and extract the persons, intents and relations it contains.

An intent is a goal, question or decision the author is tracking. For each intent, determine:
- title: a short, clear statement of the intent
- description: one or two sentences of context
- stage: one of "EXPLORATION", "REFINING", "DECISION" (use "EXPLORATION" when unsure)
- priority: 1 (low) to 5 (high)
- precision: how certain the text is about this intent, 0.0 to 1.0
- tags: a few lowercase keywords

For each person mentioned, extract name, role and confidence (0.0 to 1.0). Use "Self" for the author.

For each relation, link a person (by name, or "Self") to an intent (by its title above) with a label and a weight 0.0 to 1.0.

Respond ONLY with JSON. No markdown, no explanation. Example:
{"persons":[{"name":"Ana","role":"mentor","confidence":0.9}],"intents":[{"title":"Learn Rust","description":"Wants to learn Rust this quarter","stage":"EXPLORATION","priority":3,"precision":0.6,"tags":["learning"]}],"relations":[{"source":"Self","target":"Learn Rust","label":"pursues","weight":0.8}],"summary":"Author plans to learn Rust with Ana's guidance."}

If nothing can be extracted, respond with empty arrays.

Input:
%s`
