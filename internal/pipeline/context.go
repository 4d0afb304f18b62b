package pipeline

import (
	"strings"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
)

// maxContextArticles bounds how much article text reaches the model.
const maxContextArticles = 11

// BuildContext concatenates "title: description" lines for up to the first
// maxContextArticles articles, preserving provider order. Deterministic for
// a given payload.
func BuildContext(payload *models.NewsPayload) string {
	if payload == nil {
		return ""
	}

	var sb strings.Builder
	for i, article := range payload.Articles {
		if i >= maxContextArticles {
			break
		}
		sb.WriteString(article.Title)
		sb.WriteString(": ")
		sb.WriteString(article.Description)
		sb.WriteByte('\n')
	}
	return sb.String()
}
