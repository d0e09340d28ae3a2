package openai

import (
	"fmt"
	"strings"

	"github.com/ghanashyam9348/adeguard/ai"
	"github.com/ghanashyam9348/adeguard/core"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text": {
            "type": "string"
          },
          "type": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["text", "type", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract clinical entities from the given adverse-event report and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The "text" field must be an exact substring of the input report, copied verbatim.
- The "type" field must match exactly one of the listed values: %s.
- DRUG covers medications and vaccines; SYMPTOM covers observed adverse effects; CONDITION covers
  diagnoses and pre-existing illnesses; DOSAGE covers dose amounts, counts, and schedules.
- Confidence is a number from 0 to 1 reflecting how certain the span is a true clinical entity.
- Include only entities explicitly present in the report. Do not hallucinate.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Patient developed severe rash two days after starting amoxicillin 500mg."
Output:
{
  "entities": [
    {"text":"rash","type":"SYMPTOM","confidence":0.97},
    {"text":"amoxicillin","type":"DRUG","confidence":0.99},
    {"text":"500mg","type":"DOSAGE","confidence":0.93}
  ]
}`

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "probabilities": {
      "type": "object",
      "properties": {
        "Low": {"type": "number", "minimum": 0, "maximum": 1},
        "Medium": {"type": "number", "minimum": 0, "maximum": 1},
        "High": {"type": "number", "minimum": 0, "maximum": 1},
        "Critical": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "required": ["Low", "Medium", "High", "Critical"],
      "additionalProperties": false
    }
  },
  "required": ["probabilities"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Grade the clinical severity of the given adverse-event report and return class probabilities as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Severity rubric:
- Low: mild, self-limiting effects (local soreness, mild headache, fatigue).
- Medium: effects needing monitoring or intervention (persistent fever, vomiting, breathing difficulty).
- High: effects requiring hospitalization, emergency care, or intensive monitoring.
- Critical: life-threatening effects (anaphylaxis, cardiac arrest) or death.

Rules:
- Probabilities must sum to 1.0 within rounding error.
- Base the grade only on what the report states; do not infer outcomes that are not described.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Patient hospitalized with sustained high fever after the second dose."
Output:
{
  "probabilities": {"Low": 0.02, "Medium": 0.18, "High": 0.74, "Critical": 0.06}
}`

const explanationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "feature": {"type": "string"},
          "contribution": {"type": "number", "minimum": -1, "maximum": 1}
        },
        "required": ["feature", "contribution"],
        "additionalProperties": false
      }
    }
  },
  "required": ["features"],
  "additionalProperties": false
}`

const explanationPromptTemplate = `The severity of the following adverse-event report was graded as %q. Decompose that decision
into additive per-word contributions and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Each "feature" must be a single word copied verbatim from the report.
- Contribution is in [-1, 1]: positive values push toward the %q grade, negative values away from it.
- List at most 10 features, most influential first.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// buildExtractionPrompt creates the extraction system prompt with the
// entity types embedded.
func buildExtractionPrompt() string {
	names := make([]string, len(ai.EntityTypes))
	for i, t := range ai.EntityTypes {
		names[i] = string(t)
	}
	return fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema, strings.Join(names, ", "))
}

// buildClassificationPrompt creates the severity grading system prompt.
func buildClassificationPrompt() string {
	return fmt.Sprintf(classificationPromptTemplate, classificationResponseSchema)
}

// buildExplanationPrompt creates the attribution system prompt for a level.
func buildExplanationPrompt(level core.SeverityLevel) string {
	return fmt.Sprintf(explanationPromptTemplate, level.String(), explanationResponseSchema, level.String())
}
