package llm

const classifyPrompt = `Classify the following identity statement into exactly one category.

Categories:
- identity: who the person is, roles, self-descriptions
- value: what the person cares about or believes is important
- behavior: how the person habitually acts or works
- boundary: what the person refuses, avoids or will not tolerate
- voice: how the person communicates, tone and style

Respond with ONLY the category name. No explanation.

Statement:
%s`

const labelPrompt = `You are distilling a person's accumulated notes into short identity statements.

The following observations were grouped because they express one recurring idea.
Representative observation:
%s

Supporting observations:
%s

Write ONE first-person statement of at most %d characters that captures the shared idea.
Respond with ONLY the statement on a single line. No quotes, no markdown, no explanation.`

const labelCorrectionPrompt = `%s

Your previous answer was rejected: %s
Previous answer:
%s

Try again following the format exactly.`
