package vision

import (
	"fmt"
	"strings"

	"github.com/trovato-shop/trovato/internal/domain"
)

func categoryList() string {
	cats := domain.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func identifyPrompt() string {
	return fmt.Sprintf(`You are a product identification assistant for an e-commerce catalog.
Look at the product photo and identify what it shows.

Pick exactly one category from this list: %s.
If the photo does not clearly show a product from the list, use an empty category.
When a product could fit more than one category, pick the one matching its
primary function.

Respond with JSON only, no other text:
{"category": "<category or empty>", "product_name": "<short product name>", "reasoning": "<one sentence>"}`,
		categoryList())
}

func textPrompt(query string) string {
	return fmt.Sprintf(`You are a shopping query analyst for an e-commerce catalog.
Analyze the customer query below.

Pick at most one category from this list: %s.
Use an empty category when the query does not map to any of them.
Extract search keywords in order of importance. Keywords should be concrete
product terms, not filler words. Never use generic category words like
"electronics" or "clothing" as keywords; the category field already covers
those.

Query: %q

Respond with JSON only, no other text:
{"category": "<category or empty>", "keywords": ["<keyword>", ...], "summary": "<one sentence>", "suggestions": ["<related query>", ...]}`,
		categoryList(), query)
}

func comparePrompt(n int) string {
	return fmt.Sprintf(`You are a visual product matcher.
The first image is the customer's reference photo. The following %d images are
catalog candidates, numbered in order starting from 1.

Rank the candidates by visual similarity to the reference, best match first.
Judge the product itself, not photo quality, background or angle. Leave out
candidates that clearly show a different product.
When candidates are equally close, prefer the exact same product over one
from the same category, and the same category over a mere color match.
When one photo shows a part of a product and another the whole product,
rank whichever is the closer overall match higher. If the reference photo
is blurred, judge by silhouette and overall shape.

Respond with JSON only, no other text:
{"ranked": [<candidate number>, ...], "top_match": <candidate number or 0>, "confidence": "high|medium|low", "reasoning": "<one sentence>"}`,
		n)
}
