package engine

const narrativeSystem = `You are a senior equity strategist writing a concise desk note.`

const jsonSystem = `You are a JSON generator. Output a single JSON object only.`

const narrativePrompt = `Write a market analysis for %s.

Format rules:
- Write 4 to 6 paragraphs separated by one blank line.
- The first line of every paragraph is a short title. The remaining lines are bullet points starting with "* ".
- The first paragraph is the Executive Summary.
- Each title should carry a tone word when it applies: Bullish, Bearish, Cautious, Mixed or Anxious.
- Cover price action, volume and institutional flows, key levels, catalysts and risks.`

const pulsePrompt = `Give a quick market pulse for %s.
Respond strictly in this JSON format:
{
	"metrics": {
		"sentiment": "Bullish | Bearish | Mixed | Neutral",
		"volume": "one or two words, e.g. Surge, Low, Steady",
		"institutional": "one or two words, e.g. Accumulation, Distribution",
		"momentum": "one or two words, e.g. High, Drop, Flat"
	},
	"alphaTip": "one actionable sentence"
}`

const moodPrompt = `Estimate the current fear and greed readings for the US equity market and the crypto market.
Respond strictly in this JSON format:
{
	"equityValue": 0-100 integer,
	"equityLabel": "Extreme Fear | Fear | Neutral | Greed | Extreme Greed",
	"cryptoValue": 0-100 integer,
	"cryptoLabel": "Extreme Fear | Fear | Neutral | Greed | Extreme Greed"
}`

const outlookPrompt = `Write this week's US market outlook.
Respond strictly in this JSON format:
{
	"summary": "two or three sentences",
	"macroDrivers": [
		{"title": "driver", "description": "one sentence", "impact": "Positive | Negative | Neutral"}
	],
	"technical": {
		"SPX": {"sentimentLabel": "Bullish | Bearish | Mixed | Neutral", "bias": "short phrase", "keyLevels": ["level", "level"]},
		"NDX": {"sentimentLabel": "Bullish | Bearish | Mixed | Neutral", "bias": "short phrase", "keyLevels": ["level", "level"]}
	},
	"bullCase": ["point"],
	"bearCase": ["point"],
	"sectors": [
		{"name": "sector", "reason": "one sentence", "rating": "Overweight | Underweight | Neutral"}
	]
}`
