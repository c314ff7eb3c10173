// File: internal/prompt/prompt.go
package prompt

import (
	"fmt"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
)

const longSystemPrompt = `You are a helpful assistant specialized in extracting information from unstructured articles. You are asked to extract metadata from the article provided by the user and write two summaries of the article, a short summary and a long summary. You have a strict methodology:
 - the slug must be a string in lowercase with no white spaces;
 - the short summary must not exceed 100 words and must include the names of the authors;
 - the long summary must not exceed 300 words;
 - You respond in a JSON format strictly following the model : { "metadata":{"authors": list[str], "title": str, "slug": str, "categories": list[str], "countries": list[str], "date_published": str formatted as "YYYY/MM/DD"}, "summaries":{ "short_summary": str, "long_summary": str}};
 - if there is no value for a key, you must respond with an empty string;
 - The response must be a dictionary with the following keys: metadata, summaries;
 - You must make sure that the JSON is valid, do not forget the commas and the brackets and do not add new lines;
 - You must not respond with anything else than the JSON. Do not add any text or comment.`

const shortSystemPrompt = `You are a helpful assistant specialized in extracting information from unstructured articles. You are asked to extract metadata from the article provided by the user and write a short summary. You have a strict methodology:
 - the slug must be a string in lowercase with no white spaces;
 - the short summary must not exceed 100 words and must include the names of the authors;
 - You respond in a JSON format strictly following the model : { "metadata":{"slug": str, "categories": list[str], "countries": list[str]}, "short_summary": str};
 - if there is no value for a key, you must respond with an empty string;
 - The response must be a dictionary with the following keys: metadata, short_summary;
 - You must make sure that the JSON is valid, do not forget the commas and the brackets and do not add new lines;
 - You must not respond with anything else than the JSON. Do not add any text or comment.`

const longModelLine = `{ "metadata":{"authors": list[str], "title": str, "slug": str, "categories": list[str], "countries": list[str], "date_published": str formatted as "YYYY/MM/DD"}, "summaries":{ "short_summary": str, "long_summary": str}}`

const shortModelLine = `{ "metadata":{"slug": str, "categories": list[str], "countries": list[str]}, "short_summary": str}`

// BuildExtraction returns the two-message prompt asking the model to extract
// metadata (and summaries) from the supplied article text.
func BuildExtraction(s Schema, input string) []adapter.Message {
	system := longSystemPrompt
	user := fmt.Sprintf("Please extract metadata from the article provided below and write two summaries: \n %s", input)
	if s == SchemaShort {
		system = shortSystemPrompt
		user = fmt.Sprintf("Please extract metadata from the article provided below and write a short summary: \n%s", input)
	}
	return []adapter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// BuildRepair returns the two-message prompt asking the model to fix a
// malformed response into the schema's shape.
func BuildRepair(s Schema, malformed string) []adapter.Message {
	modelLine := longModelLine
	if s == SchemaShort {
		modelLine = shortModelLine
	}
	system := fmt.Sprintf(`You are a helpful assistant in charge of correcting an erroneous json file. The expected format was :
 %s;

 However, the json file you received was : %s`, modelLine, malformed)
	user := "Please fix the json file to match the expected format. You must make sure that the JSON is valid, do not forget the commas and the brackets and do not add new lines. You must not respond with anything else than the JSON. Do not add any text or comment."
	return []adapter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
